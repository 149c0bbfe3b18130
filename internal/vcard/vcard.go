// Package vcard renders a card profile as a vCard 3.0 document. Rendering is a
// pure transformation of current store state; output is never cached.
package vcard

import (
	"strings"

	"cardlink/internal/card"
)

// foldWidth is the maximum octets per physical line before a continuation
// line is started.
const foldWidth = 70

// Render serializes the profile. It returns the empty string when no
// identity-relevant field is populated: a document of only BEGIN/VERSION/END
// boilerplate is equivalent to having nothing to export, and callers treat the
// empty result as an explicit no-content outcome, not an error.
//
// Absent fields produce no line at all.
func Render(c card.Card) string {
	p := c.Profile
	if !hasContent(p) {
		return ""
	}

	var b strings.Builder
	writeLine(&b, "BEGIN:VCARD")
	writeLine(&b, "VERSION:3.0")

	if p.Name != "" {
		first, last := splitName(p.Name)
		writeLine(&b, "N:"+escape(last)+";"+escape(first)+";;;")
		writeLine(&b, "FN:"+escape(p.Name))
	}
	if p.Company != "" {
		writeLine(&b, "ORG:"+escape(p.Company))
	}
	if p.Title != "" {
		writeLine(&b, "TITLE:"+escape(p.Title))
	}
	if p.Mobile != "" {
		writeLine(&b, "TEL;TYPE=CELL:"+escape(p.Mobile))
	}
	if p.Phone != "" {
		writeLine(&b, "TEL;TYPE=WORK:"+escape(p.Phone))
	}
	// The public-facing email wins when both are populated.
	if email := preferredEmail(p); email != "" {
		writeLine(&b, "EMAIL;TYPE=INTERNET:"+escape(email))
	}
	if p.Website != "" {
		writeLine(&b, "URL:"+escape(p.Website))
	}
	if p.Address != "" {
		// Single free-text address line in the street slot.
		writeLine(&b, "ADR;TYPE=WORK:;;"+escape(p.Address)+";;;;")
	}
	if p.ImageURL != "" {
		writeLine(&b, "PHOTO;VALUE=URI:"+escape(p.ImageURL))
	}

	writeLine(&b, "END:VCARD")
	return b.String()
}

func hasContent(p card.Profile) bool {
	for _, f := range []string{
		p.Name, p.Company, p.Title, p.Phone, p.Mobile,
		p.Email, p.EmailPublic, p.Website, p.Address, p.ImageURL,
	} {
		if f != "" {
			return true
		}
	}
	return false
}

func preferredEmail(p card.Profile) string {
	if p.EmailPublic != "" {
		return p.EmailPublic
	}
	return p.Email
}

// splitName splits on whitespace: the last token is the family name, everything
// before it folds into the given-name slot. Single-word names get an empty
// family name.
func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}

// escape backslash-escapes the three reserved characters and turns embedded
// line breaks into the two-character \n escape.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case ',':
			b.WriteString(`\,`)
		case ';':
			b.WriteString(`\;`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			// Part of a CRLF pair; the \n case emits the escape.
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// unescape reverses escape. Used when reading a rendered value back.
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n', 'N':
				b.WriteByte('\n')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// writeLine folds content over foldWidth octets onto CRLF-separated
// continuation lines, each starting with a single space.
func writeLine(b *strings.Builder, content string) {
	for len(content) > foldWidth {
		b.WriteString(content[:foldWidth])
		b.WriteString("\r\n ")
		content = content[foldWidth:]
	}
	b.WriteString(content)
	b.WriteString("\r\n")
}

// unfold joins continuation lines back together so a rendered document can be
// read line by line.
func unfold(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n ", "")
	doc = strings.TrimSuffix(doc, "\r\n")
	if doc == "" {
		return nil
	}
	return strings.Split(doc, "\r\n")
}
