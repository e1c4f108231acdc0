// internal/app/gateway/visitors.go
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// File is an upload carried alongside a visitor record.
type File struct {
	Name        string // original file name
	ContentType string
	Body        io.Reader
}

// VisitorUploads holds the optional photo and ID-proof files.
type VisitorUploads struct {
	Image   *File
	IDProof *File
}

// ListVisitors returns one page of visitors.
func (c *Client) ListVisitors(ctx context.Context, p ListParams) (Page[models.Visitor], error) {
	return list[models.Visitor](ctx, c, "visitors.list", "visitor", p)
}

// CreateVisitor creates a visitor using multipart form data.
func (c *Client) CreateVisitor(ctx context.Context, in models.VisitorInput, files VisitorUploads) (models.Visitor, error) {
	return c.sendVisitor(ctx, "visitors.create", http.MethodPost, "visitor/create-visitor", in, files)
}

// UpdateVisitor applies a partial update to visitor id. Only the non-zero
// fields of in (and any files) are sent.
func (c *Client) UpdateVisitor(ctx context.Context, id models.ID, in models.VisitorInput, files VisitorUploads) (models.Visitor, error) {
	return c.sendVisitor(ctx, "visitors.update", http.MethodPut, "visitor/"+id.String(), in, files)
}

// DeleteVisitor removes visitor id.
func (c *Client) DeleteVisitor(ctx context.Context, id models.ID) error {
	return remove(ctx, c, "visitors.delete", "visitor/"+id.String())
}

func (c *Client) sendVisitor(ctx context.Context, op, method, path string, in models.VisitorInput, files VisitorUploads) (models.Visitor, error) {
	var out models.Visitor

	body, contentType, err := encodeVisitor(in, files)
	if err != nil {
		return out, &Error{Kind: KindDecode, Op: op, Err: err}
	}
	raw, err := c.do(ctx, call{op: op, method: method, path: path, body: body, contentType: contentType})
	if err != nil {
		return out, err
	}
	err = decodeEntity(op, raw, &out)
	return out, err
}

// VisitorFields flattens in into the string fields the backend expects.
// Zero values are omitted.
func VisitorFields(in models.VisitorInput) []Field {
	var f []Field
	add := func(name, value string) {
		if value != "" {
			f = append(f, Field{Name: name, Value: value})
		}
	}
	addTime := func(name string, t *time.Time) {
		if t != nil && !t.IsZero() {
			add(name, t.UTC().Format(time.RFC3339))
		}
	}

	add("name", in.Name)
	add("phone", in.Phone)
	add("address", in.Address)
	add("purpose", in.Purpose)
	if in.VisitorsCount > 0 {
		add("visitorscount", strconv.Itoa(in.VisitorsCount))
	}
	add("apartmentId", in.ApartmentID.String())
	addTime("fromdate", in.FromDate)
	addTime("todate", in.ToDate)
	add("travelmode", in.TravelMode)
	add("vehicleType", string(in.VehicleType))
	add("vehicleNo", in.VehicleNo)
	add("approvalstatus", string(in.ApprovalStatus))
	add("visitorstatus", string(in.VisitorStatus))
	addTime("arrivedtime", in.ArrivedTime)
	addTime("departedtime", in.DepartedTime)
	add("createdby", in.CreatedBy)
	add("createdbyrole", in.CreatedByRole)
	return f
}

// Field is a single multipart value.
type Field struct {
	Name  string
	Value string
}

func encodeVisitor(in models.VisitorInput, files VisitorUploads) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range VisitorFields(in) {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	if err := writeFile(mw, "image", files.Image); err != nil {
		return nil, "", err
	}
	if err := writeFile(mw, "idproof", files.IDProof); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func writeFile(mw *multipart.Writer, field string, f *File) error {
	if f == nil || f.Body == nil {
		return nil
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f.Body)
	return err
}
