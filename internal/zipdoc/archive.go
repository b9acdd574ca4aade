// Package zipdoc reads the zip containers behind Office Open XML,
// OpenDocument and EPUB files.
package zipdoc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/tsawler/mosaic/model"
)

// MaxPartSize bounds the decompressed size of a single part
const MaxPartSize = 64 << 20

// ErrMissingPart is returned when a part is not in the archive
var ErrMissingPart = errors.New("part not found")

// ErrNotRaster is returned by Image for vector or unknown image formats such
// as EMF and WMF
var ErrNotRaster = errors.New("not a raster image")

// ErrPartTooLarge is returned when a part decompresses past MaxPartSize
var ErrPartTooLarge = errors.New("part exceeds size limit")

// Archive is a read-only view of a zip container
type Archive struct {
	files map[string]*zip.File
}

// Open reads the zip directory of data
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	a := &Archive{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		a.files[f.Name] = f
	}
	return a, nil
}

// Has reports whether the archive contains name
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// Require returns an error naming the first missing part
func (a *Archive) Require(names ...string) error {
	for _, name := range names {
		if !a.Has(name) {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

// Read returns the decompressed content of name
func (a *Archive) Read(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) > MaxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, name)
	}
	return data, nil
}

// Unmarshal decodes the XML part name into v
func (a *Archive) Unmarshal(name string, v any) error {
	data, err := a.Read(name)
	if err != nil {
		return err
	}
	if err := NewDecoder(data).Decode(v); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", name, err)
	}
	return nil
}

// NewDecoder returns an XML decoder over data that understands the legacy
// encodings some producers still declare
func NewDecoder(data []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.CharsetReader = charset.NewReaderLabel
	return d
}

// Attr returns the value of the attribute with the given local name
func Attr(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Relationship is one entry of an Office Open XML .rels part
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the target lives outside the package
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

type relationshipsXML struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Relationship []Relationship `xml:"Relationship"`
}

// Relationships returns the relationships of part keyed by ID, with targets
// resolved to archive paths. A part without a .rels file has none.
func (a *Archive) Relationships(part string) (map[string]Relationship, error) {
	relsPath := path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
	rels := make(map[string]Relationship)
	if !a.Has(relsPath) {
		return rels, nil
	}

	var doc relationshipsXML
	if err := a.Unmarshal(relsPath, &doc); err != nil {
		return nil, err
	}
	for _, r := range doc.Relationship {
		if !r.External() {
			r.Target = Resolve(part, r.Target)
		}
		rels[r.ID] = r
	}
	return rels, nil
}

// Resolve turns target, relative to the directory of part, into an archive
// path. Absolute targets are taken from the archive root.
func Resolve(part, target string) string {
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir(part), target), "/")
}

// Image reads an embedded image part and returns it as an image region
func (a *Archive) Image(name string) (model.RawRegion, error) {
	f := model.ParseImageFormat(strings.TrimPrefix(path.Ext(name), "."))
	if f == model.ImageFormatUnknown {
		return model.RawRegion{}, fmt.Errorf("%w: %s", ErrNotRaster, name)
	}
	data, err := a.Read(name)
	if err != nil {
		return model.RawRegion{}, err
	}
	return model.RawRegion{
		Type:     model.RegionImage,
		Data:     data,
		MIMEType: f.MIMEType(),
	}, nil
}
