package source

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	docxBody = "word/document.xml"
	wordNS   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// splitRules split a gift paragraph into name and gift. The first matching
// rule wins; greedy groups split at the last separator.
var splitRules = []*regexp.Regexp{
	regexp.MustCompile(`^(.*) -- (.*)$`),
	regexp.MustCompile(`^(.*) (\$.*)$`),
}

// DocxAdapter reads gift documents written in Word, one recipient per
// paragraph:
//
//	Ann Lee -- Ceramic mug
//	Bo Chan $25 gift card
//
// A paragraph matching neither form becomes a one-cell row.
type DocxAdapter struct{}

// Kind implements Adapter.
func (a *DocxAdapter) Kind() Kind { return KindDocument }

// ReadRows implements Adapter.
func (a *DocxAdapter) ReadRows(r io.Reader, _ int64) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer rc.Close()

		paragraphs, err := readParagraphs(rc)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", docxBody, err)
		}
		return SplitParagraphs(paragraphs), nil
	}

	return nil, fmt.Errorf("docx archive has no %s", docxBody)
}

// SplitParagraphs turns paragraph text into rows, skipping empty paragraphs.
func SplitParagraphs(paragraphs []string) [][]string {
	rows := make([][]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p == "" {
			continue
		}
		rows = append(rows, splitParagraph(p))
	}
	return rows
}

func splitParagraph(p string) []string {
	for _, rule := range splitRules {
		if m := rule.FindStringSubmatch(p); m != nil {
			return []string{m[1], m[2]}
		}
	}
	return []string{p}
}

// readParagraphs concatenates the run text of every top-level w:p element.
// Paragraphs nested inside another (text boxes) are folded into their parent.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		text       strings.Builder
		depth      int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return paragraphs, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					text.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					text.WriteByte('\t')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, text.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}
}
