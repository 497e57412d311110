package notice

import (
	"io"
	"os"
	"strings"
)

// textEditor edits a plain text notice line by line.
type textEditor struct {
	lines   []string
	newline string
}

func loadText(path string) (*textEditor, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	content := string(raw)
	ed := &textEditor{newline: "\n"}
	if strings.Contains(content, "\r\n") {
		ed.newline = "\r\n"
	}
	if content = strings.TrimSuffix(content, ed.newline); content != "" {
		ed.lines = strings.Split(content, ed.newline)
	}
	return ed, append([]string(nil), ed.lines...), nil
}

func (e *textEditor) insert(index int, text string) error {
	// Entries spanning lines are flattened so one entry stays one paragraph.
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", " "), "\n", " ")
	e.lines = append(e.lines, "")
	copy(e.lines[index+1:], e.lines[index:])
	e.lines[index] = text
	return nil
}

func (e *textEditor) write(path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		content := strings.Join(e.lines, e.newline)
		if len(e.lines) > 0 {
			content += e.newline
		}
		_, err := io.WriteString(w, content)
		return err
	})
}
