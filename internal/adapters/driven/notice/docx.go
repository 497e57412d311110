package notice

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

// zipEntry is one archive member kept in memory.
type zipEntry struct {
	header zip.FileHeader
	data   []byte
}

// docxParagraph is the raw XML of one body-level paragraph.
type docxParagraph struct {
	raw  []byte
	text string
}

// docxEditor splits word/document.xml into body-level paragraphs and the
// bytes around them. Inserting a paragraph never touches the other bytes.
type docxEditor struct {
	entries  []zipEntry
	docIndex int

	// prefix precedes the first paragraph; gaps[i] follows paras[i].
	prefix []byte
	paras  []docxParagraph
	gaps   [][]byte
}

func loadDocx(path string) (*docxEditor, []string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	ed := &docxEditor{docIndex: -1}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, err
		}
		if f.Name == documentPart {
			ed.docIndex = len(ed.entries)
		}
		ed.entries = append(ed.entries, zipEntry{header: f.FileHeader, data: data})
	}
	if ed.docIndex < 0 {
		return nil, nil, fmt.Errorf("%s missing", documentPart)
	}

	if err := ed.split(ed.entries[ed.docIndex].data); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}

	texts := make([]string, len(ed.paras))
	for i, p := range ed.paras {
		texts[i] = p.text
	}
	return ed, texts, nil
}

// split locates every paragraph whose parent is w:body.
func (e *docxEditor) split(doc []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var (
		stack   []string
		start   int64
		depth   int
		inText  bool
		text    strings.Builder
		inPara  bool
		spans   [][2]int64
		content []string
	)
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if !inPara && t.Name.Local == "p" && len(stack) >= 2 && stack[len(stack)-2] == "body" {
				inPara = true
				start = offset
				depth = len(stack)
				text.Reset()
			}
			if inPara && t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if inPara && t.Name.Local == "t" {
				inText = false
			}
			if inPara && t.Name.Local == "p" && len(stack) == depth {
				inPara = false
				spans = append(spans, [2]int64{start, dec.InputOffset()})
				content = append(content, text.String())
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}

	if len(spans) == 0 {
		e.prefix = doc
		return nil
	}

	e.prefix = doc[:spans[0][0]]
	for i, sp := range spans {
		end := int64(len(doc))
		if i+1 < len(spans) {
			end = spans[i+1][0]
		}
		e.paras = append(e.paras, docxParagraph{raw: doc[sp[0]:sp[1]], text: content[i]})
		e.gaps = append(e.gaps, doc[sp[1]:end])
	}
	return nil
}

// paragraphXML renders a plain paragraph using the namespace prefix of ref.
func paragraphXML(ref []byte, text string) []byte {
	prefix := ""
	if open := bytes.IndexByte(ref, '<'); open >= 0 {
		name := ref[open+1:]
		if colon := bytes.IndexByte(name, ':'); colon >= 0 && colon < bytes.IndexAny(name, " >/") {
			prefix = string(name[:colon+1])
		}
	}

	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))

	var b bytes.Buffer
	fmt.Fprintf(&b, `<%[1]sp><%[1]sr><%[1]st xml:space="preserve">%[2]s</%[1]st></%[1]sr></%[1]sp>`,
		prefix, escaped.String())
	return b.Bytes()
}

// insert places a new paragraph at index, directly after paras[index-1].
func (e *docxEditor) insert(index int, text string) error {
	if index < 1 || index > len(e.paras) {
		return fmt.Errorf("paragraph index %d out of range", index)
	}
	p := docxParagraph{raw: paragraphXML(e.paras[index-1].raw, text), text: text}

	e.paras = append(e.paras, docxParagraph{})
	copy(e.paras[index+1:], e.paras[index:])
	e.paras[index] = p

	// The new paragraph takes over the gap that followed its predecessor.
	e.gaps = append(e.gaps, nil)
	copy(e.gaps[index:], e.gaps[index-1:])
	e.gaps[index-1] = nil
	return nil
}

func (e *docxEditor) document() []byte {
	var b bytes.Buffer
	b.Write(e.prefix)
	for i, p := range e.paras {
		b.Write(p.raw)
		b.Write(e.gaps[i])
	}
	return b.Bytes()
}

func (e *docxEditor) write(path string) error {
	doc := e.document()
	return writeAtomic(path, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for i, entry := range e.entries {
			header := entry.header
			data := entry.data
			if i == e.docIndex {
				data = doc
			}
			fw, err := zw.CreateHeader(&header)
			if err != nil {
				return err
			}
			if _, err := fw.Write(data); err != nil {
				return err
			}
		}
		return zw.Close()
	})
}
