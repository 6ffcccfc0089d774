package session

import "fmt"

// NamedFile is a file's content with the name it was picked under.
type NamedFile struct {
	Name string
	Data []byte
}

// MergeList is the ordered list of files selected for a merge. The same file may
// appear more than once.
type MergeList struct {
	files []NamedFile
}

// Add appends files at the end of the list.
func (l *MergeList) Add(files ...NamedFile) {
	l.files = append(l.files, files...)
}

// Remove deletes the file at index.
func (l *MergeList) Remove(index int) error {
	if index < 0 || index >= len(l.files) {
		return fmt.Errorf("merge list: index %d out of range [0,%d)", index, len(l.files))
	}
	l.files = append(l.files[:index], l.files[index+1:]...)
	return nil
}

// Files returns a copy of the list in order.
func (l *MergeList) Files() []NamedFile {
	out := make([]NamedFile, len(l.files))
	copy(out, l.files)
	return out
}

func (l *MergeList) Len() int { return len(l.files) }
