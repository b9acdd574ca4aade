// Package extract turns source documents into pages of raw regions.
//
// A Document is a lazy, finite page sequence over one source. Pages are
// produced in order by Next until io.EOF:
//
//	doc, err := extract.Open(data, "application/pdf", extract.DefaultConfig())
//	if err != nil {
//	    return err // *UnprocessableError
//	}
//	for {
//	    page, err := doc.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Supported formats are PDF, standalone raster images, plain text, markdown,
// HTML, the Office Open XML trio (DOCX, XLSX, PPTX), ODT and EPUB. A page that fails to parse is still returned, with Err set to a
// *RegionExtractionError and no regions.
package extract
