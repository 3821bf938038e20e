package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/modules/registration/schema"
)

func parse(t *testing.T, out string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not re-parse: %v", err)
	}
	return records
}

func sub(first string, answers map[string]interface{}) models.SubmissionModel {
	return models.SubmissionModel{
		FirstName: first,
		LastName:  "Tester",
		Email:     first + "@example.com",
		Phone:     "555-0100",
		Answers:   answers,
	}
}

func TestHeaderIsUnionOfObservedKeys(t *testing.T) {
	sch := schema.FieldList{
		{ID: "tshirt_size", Type: schema.FieldSelect, Label: "T-Shirt Size", Options: []string{"S", "M"}},
	}
	subs := []models.SubmissionModel{
		sub("Ann", map[string]interface{}{"tshirt_size": "M"}),
		sub("Bob", map[string]interface{}{"dietary": "vegan"}),
	}

	records := parse(t, Flatten(sch, subs))
	header := records[0]

	wantHeader := []string{"First Name", "Last Name", "Email", "Phone", "T-Shirt Size", "Dietary"}
	if len(header) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", header, wantHeader)
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], wantHeader[i])
		}
	}

	// Each row has an empty cell for the key it lacks.
	if records[1][5] != "" {
		t.Errorf("Ann's dietary cell = %q, want empty", records[1][5])
	}
	if records[2][4] != "" {
		t.Errorf("Bob's t-shirt cell = %q, want empty", records[2][4])
	}
	if records[1][4] != "M" || records[2][5] != "vegan" {
		t.Errorf("values misplaced: %v / %v", records[1], records[2])
	}
}

func TestEscapingRoundTrips(t *testing.T) {
	tricky := `likes "spicy" food, no nuts` + "\nsecond line"
	subs := []models.SubmissionModel{
		sub("Ann", map[string]interface{}{"notes": tricky}),
	}

	records := parse(t, Flatten(nil, subs))
	if got := records[1][4]; got != tricky {
		t.Fatalf("value did not survive export: %q", got)
	}
}

func TestEveryCellIsQuoted(t *testing.T) {
	out := Flatten(nil, []models.SubmissionModel{sub("Ann", nil)})
	line := strings.SplitN(out, "\r\n", 2)[0]
	for _, c := range strings.Split(line, ",") {
		if !strings.HasPrefix(c, `"`) || !strings.HasSuffix(c, `"`) {
			t.Fatalf("unquoted cell %q in %q", c, line)
		}
	}
}

func TestValueShapes(t *testing.T) {
	sch := schema.FieldList{
		{ID: "days", Type: schema.FieldCheckbox, Label: "Days", Options: []string{"Sat", "Sun"}},
		{ID: "guests", Type: schema.FieldNumber, Label: "Guests"},
	}
	subs := []models.SubmissionModel{
		sub("Ann", map[string]interface{}{
			"days":   []interface{}{"Sat", "Sun"},
			"guests": float64(2),
		}),
	}

	records := parse(t, Flatten(sch, subs))
	row := records[1]
	if row[4] != "Sat, Sun" {
		t.Errorf("checkbox cell = %q, want %q", row[4], "Sat, Sun")
	}
	if row[5] != "2" {
		t.Errorf("numeric cell = %q, want %q", row[5], "2")
	}
}

func TestOrphanedKeysAreDeterministic(t *testing.T) {
	subs := []models.SubmissionModel{
		sub("Ann", map[string]interface{}{"zeta": "1", "alpha": "2"}),
	}

	first := Flatten(nil, subs)
	for i := 0; i < 5; i++ {
		if again := Flatten(nil, subs); again != first {
			t.Fatal("export output is not deterministic across runs")
		}
	}

	header := parse(t, first)[0]
	if header[4] != "Alpha" || header[5] != "Zeta" {
		t.Errorf("orphan order = %v, want lexicographic", header[4:])
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("spring-gala"); got != "spring-gala-registrations.csv" {
		t.Errorf("Filename = %q", got)
	}
	if got := Filename(""); got != "event-registrations.csv" {
		t.Errorf("Filename empty slug = %q", got)
	}
}
