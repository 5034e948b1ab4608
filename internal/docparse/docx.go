package docparse

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// relationship is one entry of word/_rels/document.xml.rels. The decoder
// preserves the file's element order, which is the order images are
// assigned ids in.
type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type relationships struct {
	Relationships []relationship `xml:"Relationship"`
}

// ParseDocx reads a .docx archive and returns its paragraph texts plus the
// raw bytes of every embedded image, in declared relationship order.
func ParseDocx(filePath string) (Document, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return Document{}, fmt.Errorf("opening docx archive: %w", err)
	}
	defer zr.Close()

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	docPart, ok := parts["word/document.xml"]
	if !ok {
		return Document{}, fmt.Errorf("docx has no word/document.xml")
	}
	paragraphs, err := extractParagraphs(docPart)
	if err != nil {
		return Document{}, fmt.Errorf("extracting paragraphs: %w", err)
	}

	images, err := extractImages(parts)
	if err != nil {
		return Document{}, fmt.Errorf("extracting images: %w", err)
	}

	return Document{Paragraphs: paragraphs, Images: images}, nil
}

// extractParagraphs walks word/document.xml collecting the text runs of each
// <w:p> element. Empty paragraphs are skipped.
func extractParagraphs(part *zip.File) ([]string, error) {
	rc, err := part.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				inParagraph = false
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
			}
		}
	}

	return paragraphs, nil
}

// extractImages reads the document relationships and returns the bytes of
// every image target, preserving the order relationships are declared in.
func extractImages(parts map[string]*zip.File) ([][]byte, error) {
	relsPart, ok := parts["word/_rels/document.xml.rels"]
	if !ok {
		return nil, nil
	}

	rc, err := relsPart.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rels relationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return nil, fmt.Errorf("decoding relationships: %w", err)
	}

	var images [][]byte
	for _, rel := range rels.Relationships {
		if !strings.Contains(rel.Target, "image") && !strings.HasSuffix(rel.Type, "/image") {
			continue
		}

		// Targets are relative to the word/ part directory.
		target := path.Clean(path.Join("word", strings.TrimPrefix(rel.Target, "/")))
		part, ok := parts[target]
		if !ok {
			continue
		}

		pr, err := part.Open()
		if err != nil {
			return nil, fmt.Errorf("opening image part %s: %w", target, err)
		}
		data, err := io.ReadAll(pr)
		pr.Close()
		if err != nil {
			return nil, fmt.Errorf("reading image part %s: %w", target, err)
		}
		images = append(images, data)
	}

	return images, nil
}
