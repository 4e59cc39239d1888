package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/jrsteele09/go-share-portal/internal/errors"
)

// File is an attachment to upload.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// UploadResult carries the id of the new attachment and the CRM's raw answer.
type UploadResult struct {
	AttachmentID string
	Raw          json.RawMessage
}

type uploadResponse struct {
	Data []struct {
		ID      string `json:"id"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
	} `json:"data"`
}

// UploadAccountAttachment attaches file to an account record.
func (c *Client) UploadAccountAttachment(ctx context.Context, token string, scheme AuthScheme, version APIVersion, accountID string, file File) (UploadResult, error) {
	body, contentType, err := multipartBody(file)
	if err != nil {
		return UploadResult{}, errors.Wrapf(err, "[crm UploadAccountAttachment]")
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.recordURL(version, fmt.Sprintf("Accounts/%s/Attachments", url.PathEscape(accountID))),
		token:       token,
		scheme:      scheme,
		contentType: contentType,
		body:        body,
	})
	if err != nil {
		return UploadResult{}, errors.Wrapf(err, "[crm UploadAccountAttachment]")
	}

	result := UploadResult{Raw: json.RawMessage(resp)}
	var parsed uploadResponse
	if err := json.Unmarshal(resp, &parsed); err == nil && len(parsed.Data) > 0 {
		result.AttachmentID = parsed.Data[0].Details.ID
		if result.AttachmentID == "" {
			result.AttachmentID = parsed.Data[0].ID
		}
	}
	return result, nil
}

func multipartBody(file File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
