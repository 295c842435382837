package generation

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
)

// ErrEmptyMaterial is returned when neither text nor images were supplied
var ErrEmptyMaterial = errors.New("no text or image provided")

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// Attachment is an uploaded file
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsImage reports whether the attachment is sent to the model as an image
func (a Attachment) IsImage() bool {
	if imageTypes[normalizeContentType(a.ContentType)] {
		return true
	}
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(a.Filename))]
	return ok
}

func (a Attachment) imageMIMEType() string {
	if ct := normalizeContentType(a.ContentType); imageTypes[ct] {
		return ct
	}
	if ct, ok := imageExtensions[strings.ToLower(filepath.Ext(a.Filename))]; ok {
		return ct
	}
	return "image/png"
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// Part is one element of the multimodal user message.
// It is either a TextPart or an ImagePart.
type Part interface {
	isPart()
}

// TextPart carries plain text
type TextPart struct {
	Text string
}

// ImagePart carries an inline image
type ImagePart struct {
	MIMEType string
	Data     []byte
}

func (TextPart) isPart()  {}
func (ImagePart) isPart() {}

// DataURL encodes the image as a data: URL
func (p ImagePart) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Request is a complete generation request
type Request struct {
	System string
	Parts  []Part
}

// Images returns the image parts in attachment order
func (r *Request) Images() []ImagePart {
	var images []ImagePart
	for _, part := range r.Parts {
		if img, ok := part.(ImagePart); ok {
			images = append(images, img)
		}
	}
	return images
}

// BuildRequest assembles the prompt from pasted text and attachments.
// Text attachments are appended to the pasted text, images become
// separate parts. It returns ErrEmptyMaterial when there is nothing to
// generate from.
func BuildRequest(text string, attachments []Attachment) (*Request, error) {
	combined := strings.TrimSpace(text)
	var images []Part

	for _, att := range attachments {
		if att.IsImage() {
			images = append(images, ImagePart{MIMEType: att.imageMIMEType(), Data: att.Data})
			continue
		}

		content := strings.ToValidUTF8(string(att.Data), "\uFFFD")
		if combined != "" {
			combined += "\n\n" + content
		} else {
			combined = content
		}
	}

	material := truncate(strings.TrimSpace(combined), MaxTextChars)
	if material == "" && len(images) == 0 {
		return nil, ErrEmptyMaterial
	}
	if material == "" {
		material = imagePlaceholder
	}

	parts := make([]Part, 0, len(images)+1)
	parts = append(parts, TextPart{Text: materialPrefix + material})
	parts = append(parts, images...)

	return &Request{
		System: SystemPrompt,
		Parts:  parts,
	}, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
