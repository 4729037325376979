package domain

// UploadRecord is one entry in the upstream uploads listing. Each record
// groups the raw sales tables submitted for a brand.
type UploadRecord struct {
	ID          string       `json:"id"`
	Brand       string       `json:"brand"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment points at one downloadable sales table.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
