package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageNumber(t *testing.T) {
	tests := []struct {
		id   string
		want int
	}{
		{"page_1", 1},
		{"page_12", 12},
		{"doc_3_page_7", 7},
		{"p4", 4},
		{"section12_part_b", 12},
		{"intro", 0},
		{"", 0},
		{"page_", 0},
		{"page_-3", 3},
		{"page_+5", 5},
		{"page_007", 7},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePageNumber(tt.id))
		})
	}
}

func TestRow_UnmarshalJSON_PreservesOrderAndTypes(t *testing.T) {
	var row Row
	err := json.Unmarshal([]byte(`{"Name":"Peanut Butter","Calories":"190","Fat":16,"Vegan":true,"Note":null}`), &row)
	require.NoError(t, err)

	require.Len(t, row, 5)
	assert.Equal(t, "Name", row[0].Name)
	assert.Equal(t, "Calories", row[1].Name)
	assert.Equal(t, "190", row[1].Value)
	assert.Equal(t, json.Number("16"), row[2].Value)
	assert.Equal(t, true, row[3].Value)
	assert.Nil(t, row[4].Value)
}

func TestRow_MarshalJSON_RoundTrip(t *testing.T) {
	in := `{"Zeta":"1","Alpha":2.50,"Mid":"x"}`
	var row Row
	require.NoError(t, json.Unmarshal([]byte(in), &row))

	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":"1","Alpha":2.50,"Mid":"x"}`, string(out))
}

func TestRow_UnmarshalJSON_RejectsArray(t *testing.T) {
	var row Row
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &row))
}

func TestRow_Project(t *testing.T) {
	row := Row{{Name: "Name", Value: "Jam"}, {Name: "Calories", Value: "50"}}

	got := row.Project([]string{"Calories", "Sugar"})

	assert.Equal(t, Row{{Name: "Calories", Value: "50"}, {Name: "Sugar", Value: ""}}, got)
}

func TestRow_Get(t *testing.T) {
	row := Row{{Name: "Name", Value: "Jam"}}

	v, ok := row.Get("Name")
	assert.True(t, ok)
	assert.Equal(t, "Jam", v)

	_, ok = row.Get("name")
	assert.False(t, ok)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "abc", CellString("abc"))
	assert.Equal(t, "2.50", CellString(json.Number("2.50")))
	assert.Equal(t, "1.5", CellString(1.5))
	assert.Equal(t, "true", CellString(true))
}

func TestCellNumber(t *testing.T) {
	n, ok := CellNumber(json.Number("190"))
	assert.True(t, ok)
	assert.Equal(t, 190.0, n)

	_, ok = CellNumber("190")
	assert.False(t, ok)
}

func TestTable_ColumnHelpers(t *testing.T) {
	table := Table{Columns: []Column{{Name: "Name"}, {Name: "Calories"}}}

	assert.Equal(t, []string{"Name", "Calories"}, table.ColumnNames())
	assert.True(t, table.HasColumn("Calories"))
	assert.False(t, table.HasColumn("calories"))
}

func TestPage_TableTitles(t *testing.T) {
	page := Page{Tables: []Table{{Title: "A"}, {Title: "B"}}}
	assert.Equal(t, []string{"A", "B"}, page.TableTitles())
}
