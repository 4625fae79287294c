package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rahul/acadcore/internal/app/models"
)

func TestStudentLabel(t *testing.T) {
	r := NewResolver()
	r.SetStudents([]models.Student{
		{ID: "s1", AdmissionNo: "ADM001", FirstName: "Asha", LastName: "Verma"},
	})

	assert.Equal(t, "ADM001 — Asha", r.StudentLabel("s1"))
	assert.Equal(t, UnknownLabel, r.StudentLabel("s2"))
}

func TestSubjectLabel(t *testing.T) {
	r := NewResolver()
	r.SetSubjects([]models.Subject{
		{ID: "c1", Code: "CS101", Name: "Data Structures"},
	})

	assert.Equal(t, "CS101 — Data Structures", r.SubjectLabel("c1"))
	assert.Equal(t, UnknownLabel, r.SubjectLabel("missing"))
}

func TestEmptyResolverAlwaysUnknown(t *testing.T) {
	r := NewResolver()
	assert.Equal(t, UnknownLabel, r.StudentLabel("anything"))
	assert.Equal(t, UnknownLabel, r.SubjectLabel("anything"))
}

func TestSetRebuildsIndex(t *testing.T) {
	r := NewResolver()
	r.SetStudents([]models.Student{{ID: "s1", AdmissionNo: "ADM001", FirstName: "Asha"}})

	// A refetch that no longer contains the student drops it from the index.
	r.SetStudents([]models.Student{{ID: "s2", AdmissionNo: "ADM002", FirstName: "Rohan"}})

	assert.Equal(t, UnknownLabel, r.StudentLabel("s1"))
	assert.Equal(t, "ADM002 — Rohan", r.StudentLabel("s2"))
}
