package domain

import "strings"

// Classification tells whether a discussion is anchored to code.
type Classification struct {
	IsCode   bool
	FilePath string
	Line     int
	Position *Position
}

// Classify looks at the discussion position first, then at the first note
// carrying one. Without any position the discussion is a general comment.
func (d *Discussion) Classify() Classification {
	pos := d.Position
	if pos == nil {
		for _, note := range d.Notes {
			if note.Position != nil {
				pos = note.Position

				break
			}
		}
	}

	if pos == nil {
		return Classification{}
	}

	return Classification{
		IsCode:   true,
		FilePath: pos.FilePath(),
		Line:     pos.Line(),
		Position: pos,
	}
}

// UserNotes returns the notes written by people, in original order.
func (d *Discussion) UserNotes() []*Note {
	notes := make([]*Note, 0, len(d.Notes))
	for _, note := range d.Notes {
		if !note.System {
			notes = append(notes, note)
		}
	}

	return notes
}

// HasUserNotes reports whether at least one note is not a system note.
func (d *Discussion) HasUserNotes() bool {
	for _, note := range d.Notes {
		if !note.System {
			return true
		}
	}

	return false
}

// UserDiscussions drops discussions made only of system notes.
func UserDiscussions(discussions []*Discussion) []*Discussion {
	result := make([]*Discussion, 0, len(discussions))
	for _, d := range discussions {
		if d.HasUserNotes() {
			result = append(result, d)
		}
	}

	return result
}

// CountComments counts user notes, split by code and general comments.
func CountComments(discussions []*Discussion) CommentCounts {
	var counts CommentCounts

	for _, d := range discussions {
		if !d.HasUserNotes() {
			continue
		}
		counts.Discussions++

		for _, note := range d.UserNotes() {
			counts.Total++
			if note.Position != nil || d.Position != nil {
				counts.Code++
			} else {
				counts.General++
			}
		}
	}

	return counts
}

// FindDiscussion returns the discussion with the given id, or nil.
func FindDiscussion(discussions []*Discussion, id string) *Discussion {
	for _, d := range discussions {
		if d.ID == id {
			return d
		}
	}

	return nil
}

// AttachmentMap maps image URLs, as written in note bodies, to local files.
type AttachmentMap map[string]string

// Rewrite points markdown and HTML image references at the local files.
func (m AttachmentMap) Rewrite(body string) string {
	for original, local := range m {
		body = strings.ReplaceAll(body, "]("+original+")", "]("+local+")")
		body = strings.ReplaceAll(body, `src="`+original+`"`, `src="`+local+`"`)
		body = strings.ReplaceAll(body, `src='`+original+`'`, `src='`+local+`'`)
	}

	return body
}

// ProjectQuery narrows the accessible projects listing.
type ProjectQuery struct {
	// Search is passed to the server as the search parameter.
	Search string
	// Match filters projects client-side. Nil keeps everything.
	Match func(*Project) bool
	// Limit caps the number of matched projects. Zero means no cap.
	Limit int
}

// MatchAnySubstring matches projects whose name, path or description
// contains any of the terms, ignoring case. No terms matches everything.
func MatchAnySubstring(terms ...string) func(*Project) bool {
	lowered := make([]string, 0, len(terms))
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			lowered = append(lowered, strings.ToLower(term))
		}
	}

	return func(p *Project) bool {
		if len(lowered) == 0 {
			return true
		}

		fields := []string{
			strings.ToLower(p.Name),
			strings.ToLower(p.Path),
			strings.ToLower(p.Description),
		}
		for _, term := range lowered {
			for _, field := range fields {
				if strings.Contains(field, term) {
					return true
				}
			}
		}

		return false
	}
}
