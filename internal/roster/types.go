package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString decodes a JSON string or number into text. Any other JSON
// value (bool, object, array, null) decodes as the empty string so a
// malformed field renders blank instead of failing the whole record.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*f = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode text: %w", err)
		}
		*f = FlexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("decode number: %w", err)
		}
		*f = FlexString(n.String())
	default:
		*f = ""
	}
	return nil
}

// Student mirrors one record of the /students collection.
type Student struct {
	ID            string `json:"_id,omitempty"`
	Name          string `json:"name"`
	RollNumber    string `json:"rollNumber"`
	Class         string `json:"class"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Gender        string `json:"gender"`
	BatchYear     string `json:"batchYear"`
}

// UnmarshalJSON accepts numeric values for any text attribute (batch years
// and contact numbers are commonly stored as numbers server-side).
func (s *Student) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            FlexString `json:"_id"`
		Name          FlexString `json:"name"`
		RollNumber    FlexString `json:"rollNumber"`
		Class         FlexString `json:"class"`
		Address       FlexString `json:"address"`
		ContactNumber FlexString `json:"contactNumber"`
		Gender        FlexString `json:"gender"`
		BatchYear     FlexString `json:"batchYear"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Student{
		ID:            string(raw.ID),
		Name:          string(raw.Name),
		RollNumber:    string(raw.RollNumber),
		Class:         string(raw.Class),
		Address:       string(raw.Address),
		ContactNumber: string(raw.ContactNumber),
		Gender:        string(raw.Gender),
		BatchYear:     string(raw.BatchYear),
	}
	return nil
}

// IsZero reports whether no attribute is set, which is how an empty `{}`
// search answer decodes.
func (s Student) IsZero() bool {
	return s == Student{}
}

// studentBody is the write payload; identity is carried by the URL.
type studentBody struct {
	Name          string `json:"name"`
	RollNumber    string `json:"rollNumber"`
	Class         string `json:"class"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Gender        string `json:"gender"`
	BatchYear     string `json:"batchYear"`
}

func (s Student) body() studentBody {
	return studentBody{
		Name:          strings.TrimSpace(s.Name),
		RollNumber:    strings.TrimSpace(s.RollNumber),
		Class:         strings.TrimSpace(s.Class),
		Address:       strings.TrimSpace(s.Address),
		ContactNumber: strings.TrimSpace(s.ContactNumber),
		Gender:        strings.TrimSpace(s.Gender),
		BatchYear:     strings.TrimSpace(s.BatchYear),
	}
}

// Bucket is one (category, count) pair of an aggregate.
type Bucket struct {
	Label string `json:"_id"`
	Count int    `json:"count"`
}

// UnmarshalJSON tolerates numeric labels and fractional or textual counts.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label FlexString `json:"_id"`
		Count FlexString `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Label = string(raw.Label)
	b.Count = 0
	if c := strings.TrimSpace(string(raw.Count)); c != "" {
		if n, err := strconv.ParseFloat(c, 64); err == nil && n > 0 {
			b.Count = int(n)
		}
	}
	return nil
}

// Statistics mirrors /students/statistics. Every field may be absent.
type Statistics struct {
	TotalStudents       int      `json:"totalStudents"`
	StudentsByGender    []Bucket `json:"studentsByGender"`
	StudentsByBatchYear []Bucket `json:"studentsByBatchYear"`
}

// UnmarshalJSON tolerates a textual or negative total.
func (s *Statistics) UnmarshalJSON(data []byte) error {
	var raw struct {
		TotalStudents       FlexString `json:"totalStudents"`
		StudentsByGender    []Bucket   `json:"studentsByGender"`
		StudentsByBatchYear []Bucket   `json:"studentsByBatchYear"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Statistics{
		StudentsByGender:    raw.StudentsByGender,
		StudentsByBatchYear: raw.StudentsByBatchYear,
	}
	if t := strings.TrimSpace(string(raw.TotalStudents)); t != "" {
		if n, err := strconv.ParseFloat(t, 64); err == nil && n > 0 {
			s.TotalStudents = int(n)
		}
	}
	return nil
}

// decodeSearchResult interprets the roll-number lookup answer: a single
// object, an array (first element wins), or null/{}/[]/empty for no match.
func decodeSearchResult(raw []byte) (*Student, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var list []Student
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		for _, s := range list {
			if !s.IsZero() {
				found := s
				return &found, nil
			}
		}
		return nil, nil
	case '{':
		var s Student
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		if s.IsZero() {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("unexpected search payload %.20q", trimmed)
	}
}
