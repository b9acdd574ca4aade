package epubdoc

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/tsawler/mosaic/internal/zipdoc"
	"github.com/tsawler/mosaic/model"
)

// MIMEType is the media type of EPUB publications
const MIMEType = "application/epub+zip"

var (
	ErrNoContainer     = errors.New("epub: missing META-INF/container.xml")
	ErrNoRootfile      = errors.New("epub: no rootfile found in container.xml")
	ErrInvalidOPF      = errors.New("epub: invalid package document")
	ErrEmptySpine      = errors.New("epub: no content in spine")
	ErrInvalidMimetype = errors.New("epub: invalid mimetype (not an EPUB)")
	ErrDRMProtected    = errors.New("epub: DRM-protected content cannot be processed")
)

// Book is an opened EPUB publication
type Book struct {
	archive  *zipdoc.Archive
	Version  string
	Metadata Metadata
	Chapters []Chapter
}

// Open reads an EPUB publication. Chapters follow the spine; non-linear
// items and the navigation document are left out. DRM-protected books
// fail with ErrDRMProtected.
func Open(data []byte) (*Book, error) {
	a, err := zipdoc.Open(data)
	if err != nil {
		return nil, err
	}
	if a.Has("mimetype") {
		mt, err := a.Read("mimetype")
		if err != nil || strings.TrimSpace(string(mt)) != MIMEType {
			return nil, ErrInvalidMimetype
		}
	}
	if err := checkForDRM(a); err != nil {
		return nil, err
	}

	opfPath, err := rootfile(a)
	if err != nil {
		return nil, err
	}
	var opf opfPackage
	if err := a.Unmarshal(opfPath, &opf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOPF, err)
	}

	b := &Book{archive: a, Version: opf.Version, Metadata: metadata(&opf)}

	type item struct{ href, mediaType, props string }
	manifest := make(map[string]item, len(opf.Items))
	for _, it := range opf.Items {
		manifest[it.ID] = item{zipdoc.Resolve(opfPath, it.Href), it.MediaType, it.Properties}
	}
	for _, ref := range opf.ItemRefs {
		it, ok := manifest[ref.IDRef]
		if !ok || ref.Linear == "no" || slices.Contains(strings.Fields(it.props), "nav") {
			continue
		}
		if it.mediaType != "application/xhtml+xml" && it.mediaType != "text/html" {
			continue
		}
		content, err := a.Read(it.href)
		if err != nil {
			continue
		}
		b.Chapters = append(b.Chapters, Chapter{ID: ref.IDRef, Href: it.href, Content: content})
	}
	if len(b.Chapters) == 0 {
		return nil, ErrEmptySpine
	}
	return b, nil
}

// Image reads the image that src, as written in chapter, refers to. Remote
// images are not fetched.
func (b *Book) Image(chapter Chapter, src string) (model.RawRegion, error) {
	src, _, _ = strings.Cut(src, "#")
	if src == "" || strings.Contains(src, "://") || strings.HasPrefix(src, "data:") {
		return model.RawRegion{}, fmt.Errorf("%w: %s", zipdoc.ErrMissingPart, src)
	}
	return b.archive.Image(zipdoc.Resolve(chapter.Href, src))
}

// rootfile returns the path of the package document
func rootfile(a *zipdoc.Archive) (string, error) {
	if !a.Has("META-INF/container.xml") {
		return "", ErrNoContainer
	}
	var c containerXML
	if err := a.Unmarshal("META-INF/container.xml", &c); err != nil {
		return "", fmt.Errorf("epub: invalid container.xml: %w", err)
	}
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "") {
			return rf.FullPath, nil
		}
	}
	if len(c.Rootfiles) > 0 && c.Rootfiles[0].FullPath != "" {
		return c.Rootfiles[0].FullPath, nil
	}
	return "", ErrNoRootfile
}

func metadata(opf *opfPackage) Metadata {
	first := func(v []string) string {
		if len(v) == 0 {
			return ""
		}
		return strings.TrimSpace(v[0])
	}
	m := Metadata{Title: first(opf.Metadata.Title), Language: first(opf.Metadata.Language)}
	for _, c := range opf.Metadata.Creator {
		if c = strings.TrimSpace(c); c != "" {
			m.Creators = append(m.Creators, c)
		}
	}
	return m
}

// checkForDRM rejects books with Adobe rights or encrypted content
// documents. Font obfuscation is not DRM.
func checkForDRM(a *zipdoc.Archive) error {
	if a.Has("META-INF/rights.xml") {
		return ErrDRMProtected
	}
	if !a.Has("META-INF/encryption.xml") {
		return nil
	}
	var enc encryptionXML
	if err := a.Unmarshal("META-INF/encryption.xml", &enc); err != nil {
		return ErrDRMProtected
	}
	for _, ed := range enc.EncryptedData {
		if isFontObfuscation(ed.Method.Algorithm) {
			continue
		}
		if isContentFile(ed.Reference.URI) {
			return ErrDRMProtected
		}
	}
	return nil
}

func isFontObfuscation(algorithm string) bool {
	return strings.Contains(algorithm, "obfuscation") &&
		(strings.Contains(algorithm, "adobe.com") || strings.Contains(algorithm, "idpf.org"))
}

func isContentFile(uri string) bool {
	switch strings.ToLower(path.Ext(uri)) {
	case ".xhtml", ".html", ".htm", ".xml", ".css":
		return true
	}
	return false
}
