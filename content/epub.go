package content

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// container is the EPUB META-INF/container.xml structure.
type container struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles struct {
		RootFile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// opfPackage is the part of the OPF package document needed to read the
// book in spine order.
type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Titles   []string `xml:"title"`
		Creators []string `xml:"creator"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// EPUBText is the readable content of an EPUB file.
type EPUBText struct {
	Title  string
	Author string
	Text   string // spine documents in order, paragraphs separated by blank lines
}

// ExtractEPUBText reads the spine documents of an EPUB and returns their text.
func ExtractEPUBText(fileBytes []byte) (*EPUBText, error) {
	if len(fileBytes) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	reader, err := zip.NewReader(bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return nil, fmt.Errorf("invalid EPUB file (not a valid ZIP): %w", err)
	}
	containerFile, err := readZipFile(reader, "META-INF/container.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to read container.xml: %w", err)
	}
	var c container
	if err := xml.Unmarshal(containerFile, &c); err != nil {
		return nil, fmt.Errorf("failed to parse container.xml: %w", err)
	}
	if len(c.RootFiles.RootFile) == 0 {
		return nil, fmt.Errorf("no rootfile found in container.xml")
	}
	opfPath := c.RootFiles.RootFile[0].FullPath
	opfContent, err := readZipFile(reader, opfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OPF file: %w", err)
	}
	var pkg opfPackage
	if err := xml.Unmarshal(opfContent, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse OPF file: %w", err)
	}

	hrefs := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		hrefs[item.ID] = item.Href
	}
	opfDir := path.Dir(normalizeZipPath(opfPath))

	var docs []string
	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		raw, err := readZipFile(reader, path.Join(opfDir, href))
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(htmlText(raw)); t != "" {
			docs = append(docs, t)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no readable spine documents")
	}

	out := &EPUBText{Text: strings.Join(docs, "\n\n")}
	if len(pkg.Metadata.Titles) > 0 {
		out.Title = strings.TrimSpace(pkg.Metadata.Titles[0])
	}
	if len(pkg.Metadata.Creators) > 0 {
		out.Author = strings.TrimSpace(pkg.Metadata.Creators[0])
	}
	return out, nil
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "hr": true,
}

// htmlText flattens an XHTML document to text with a blank line after every
// block element. Whitespace inside a block is collapsed.
func htmlText(doc []byte) string {
	z := html.NewTokenizer(bytes.NewReader(doc))
	var (
		out   strings.Builder
		block strings.Builder
		skip  int
	)
	endBlock := func() {
		if t := strings.Join(strings.Fields(block.String()), " "); t != "" {
			if out.Len() > 0 {
				out.WriteString("\n\n")
			}
			out.WriteString(t)
		}
		block.Reset()
	}
	for {
		switch z.Next() {
		case html.ErrorToken:
			endBlock()
			return out.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" || tag == "head" {
				skip++
			}
			if blockTags[tag] {
				endBlock()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style" || tag == "head") && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				endBlock()
			}
		case html.TextToken:
			if skip == 0 {
				block.Write(z.Text())
				block.WriteByte(' ')
			}
		}
	}
}

func normalizeZipPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// readZipFile reads one entry. Matching is case-insensitive and tolerates backslashes.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	name = normalizeZipPath(name)
	for _, file := range reader.File {
		if !strings.EqualFold(normalizeZipPath(file.Name), name) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open zip file entry: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read zip file entry: %w", err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("file not found in zip: %s", name)
}
