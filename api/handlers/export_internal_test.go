package handlers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dnounce/dnounce-api/models"
)

func TestCSVCell(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"plain", "ana@example.com", "ana@example.com"},
		{"formula", "=SUM(A1:A2)", "'=SUM(A1:A2)"},
		{"at sign", "@cmd", "'@cmd"},
		{"negative number", -3.5, "-3.5"},
		{"bool", true, "true"},
		{"nested", map[string]interface{}{"firstName": "Bo"}, `{"firstName":"Bo"}`},
		{"list", []interface{}{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, csvCell(tt.in))
		})
	}
}

func TestColumnsOf(t *testing.T) {
	rows := []map[string]interface{}{
		{"source": "website", "email": "a@x.com", "id": "rec1"},
		{"consent": true, "createdTime": "2026-05-01"},
	}

	assert.Equal(t, []string{"id", "createdTime", "email", "consent", "source"}, columnsOf(rows))
}

var caseIDPattern = regexp.MustCompile(`^(EVB|OPB)\d{6}$`)

func TestRandomCaseID(t *testing.T) {
	for i := 0; i < 50; i++ {
		id, err := randomCaseID(models.CaseTypeExperience)
		assert.NoError(t, err)
		assert.Regexp(t, caseIDPattern, id)
		assert.Equal(t, "OPB", id[:3])
	}
}
