package formdialog

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(vals url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/visitor", strings.NewReader(vals.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func visitorSchema() *Schema {
	return NewSchema(
		Field{Name: "name", Label: "Name", Kind: Text, Rule: "required,min=2,max=50"},
		Field{Name: "phone", Label: "Phone", Kind: Phone, Rule: "required,digits,min=10,max=15"},
		Field{Name: "visitorscount", Label: "Visitors", Kind: Number, Rule: "required,min=1,max=10", Default: []string{"1"}},
		Field{Name: "email", Label: "Email", Kind: Email, Rule: "omitempty,email"},
		Field{Name: "approvalstatus", Label: "Approval", Kind: Select, Rule: "required,oneof=Pending Approved Denied",
			Options: []Option{{"Pending", "Pending"}, {"Approved", "Approved"}, {"Denied", "Denied"}}},
	)
}

func TestValidate_PerFieldRules(t *testing.T) {
	s := visitorSchema()
	errs := s.Validate(Values{
		"name":           {"A"},
		"phone":          {"98-765"},
		"visitorscount":  {"12"},
		"email":          {"nope"},
		"approvalstatus": {"Maybe"},
	})

	assert.Equal(t, "Name must be at least 2 characters", errs["name"])
	assert.Equal(t, "Phone must contain only digits", errs["phone"])
	assert.Equal(t, "Visitors must be at most 10", errs["visitorscount"])
	assert.Equal(t, "Enter a valid email address", errs["email"])
	assert.Equal(t, "Choose a valid approval", errs["approvalstatus"])
}

func TestValidate_RequiredAndOptional(t *testing.T) {
	s := visitorSchema()
	errs := s.Validate(Values{})

	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Select approval", errs["approvalstatus"])
	_, hasEmail := errs["email"]
	assert.False(t, hasEmail, "empty optional field should pass")
}

func TestValidate_NumberMustParse(t *testing.T) {
	s := NewSchema(Field{Name: "n", Label: "Count", Kind: Number, Rule: "min=1"})
	assert.Equal(t, "Count must be a number", s.Validate(Values{"n": {"three"}})["n"])
	assert.Empty(t, s.Validate(Values{"n": {"3"}}))
}

func TestValidate_CustomRules(t *testing.T) {
	s := NewSchema(
		Field{Name: "apt", Label: "Name", Rule: "aptname"},
		Field{Name: "who", Label: "Name", Rule: "alphaspace"},
		Field{Name: "tel", Label: "Phone", Rule: "phone10"},
	)
	errs := s.Validate(Values{"apt": {"A 101"}, "who": {"R2D2"}, "tel": {"999999999"}})
	assert.Len(t, errs, 3)

	errs = s.Validate(Values{"apt": {"A-101"}, "who": {"Asha Rao"}, "tel": {"9999999999"}})
	assert.Empty(t, errs)
}

func TestValidate_MultiSelect(t *testing.T) {
	s := NewSchema(Field{Name: "admins", Label: "Admins", Kind: MultiSelect, Rule: "required,min=1,max=2"})
	assert.Equal(t, "Select admins", s.Validate(Values{"admins": {""}})["admins"])
	assert.Equal(t, "Select at most 2", s.Validate(Values{"admins": {"1", "2", "3"}})["admins"])
	assert.Empty(t, s.Validate(Values{"admins": {"1"}}))
}

func TestValidate_CrossFieldCheck(t *testing.T) {
	s := NewSchema(Field{Name: "from"}, Field{Name: "to"}).With(func(v Values) Errors {
		if v.Get("to") <= v.Get("from") {
			return Errors{"to": "End must be after start"}
		}
		return nil
	})
	assert.Equal(t, "End must be after start", s.Validate(Values{"from": {"2026-01-02"}, "to": {"2026-01-01"}})["to"])
}

func TestSubmit_InvalidNeverCallsSave(t *testing.T) {
	s := visitorSchema()
	called := false
	sub, err := s.Submit(postForm(url.Values{"name": {"A"}}), Values{}, func(Values, Files) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrInvalid)
	assert.False(t, called)
	assert.False(t, sub.Valid())
	assert.Equal(t, "A", sub.Values.Get("name"))
}

func TestSubmit_MergesOriginalAndEdits(t *testing.T) {
	s := NewSchema(
		Field{Name: "name", Label: "Name", Kind: Text, ReadOnly: true},
		Field{Name: "approvalstatus", Label: "Approval", Kind: Select, Rule: "required,oneof=Pending Approved Denied"},
	)
	original := Values{"name": {"Kiran"}, "approvalstatus": {"Pending"}, "purpose": {"Delivery"}}

	var saved Values
	sub, err := s.Submit(postForm(url.Values{
		"name":           {"Hacked"},
		"approvalstatus": {"Approved"},
	}), original, func(v Values, _ Files) error {
		saved = v
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sub.Valid())

	assert.Equal(t, "Kiran", saved.Get("name"), "read-only field must keep its value")
	assert.Equal(t, "Approved", saved.Get("approvalstatus"))
	assert.Equal(t, "Delivery", saved.Get("purpose"))
	assert.Equal(t, []string{"approvalstatus"}, s.Changed(original, saved))
	assert.Equal(t, "Pending", original.Get("approvalstatus"), "original must not be mutated")
}

func TestSubmit_SaveErrorPropagates(t *testing.T) {
	s := NewSchema(Field{Name: "name", Kind: Text, Rule: "required"})
	boom := errors.New("backend said no")
	_, err := s.Submit(postForm(url.Values{"name": {"Asha"}}), Values{}, func(Values, Files) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestParse_StripsMarkupFromText(t *testing.T) {
	s := NewSchema(Field{Name: "purpose", Kind: TextArea})
	vals, _, err := s.Parse(postForm(url.Values{"purpose": {"<b>Plumber</b> visit"}}))
	require.NoError(t, err)
	assert.Equal(t, "Plumber visit", vals.Get("purpose"))
}

func TestParse_Multipart(t *testing.T) {
	s := NewSchema(
		Field{Name: "name", Kind: Text, Rule: "required"},
		Field{Name: "image", Kind: File, Rule: "required"},
	)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Asha"))
	fw, err := mw.CreateFormFile("image", "face.jpg")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/visitor", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	vals, files, err := s.Parse(r)
	require.NoError(t, err)
	assert.Equal(t, "face.jpg", vals.Get("image"))
	require.Contains(t, files, "image")
	assert.Equal(t, int64(len("jpeg-bytes")), files["image"].Size)
}

func TestMerge_KeepsFileWithoutUpload(t *testing.T) {
	s := NewSchema(Field{Name: "image", Kind: File})
	out := s.Merge(Values{"image": {"old.jpg"}}, Values{})
	assert.Equal(t, "old.jpg", out.Get("image"))
}

func TestDialogView(t *testing.T) {
	s := NewSchema(
		Field{Name: "admins", Label: "Admins", Kind: MultiSelect, Rule: "required",
			Options: []Option{{"1", "Asha"}, {"2", "Ravi"}}},
		Field{Name: "image", Label: "Photo", Kind: File, Span: 5},
	)
	v := Dialog{ID: "d", Schema: s, Values: Values{"admins": {"2"}, "image": {"x.jpg"}}, Errors: Errors{"": "rejected"}}.View()

	assert.True(t, v.Multipart)
	assert.Equal(t, "Save", v.SubmitLabel)
	assert.Equal(t, "rejected", v.FormError)
	require.Len(t, v.Fields, 2)
	assert.True(t, v.Fields[0].Required)
	assert.Equal(t, []OptionView{{Value: "2", Label: "Ravi", Selected: true}}, v.Fields[0].Chips)
	assert.Empty(t, v.Fields[1].Value)
	assert.Equal(t, 1, v.Fields[1].Span)
}

func TestSchemaDefaults(t *testing.T) {
	assert.Equal(t, Values{"visitorscount": {"1"}}, visitorSchema().Defaults())
}
