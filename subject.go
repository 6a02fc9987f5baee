package nats

import "strings"

// validatePublishSubject rejects subjects that are empty, contain
// whitespace/CR/LF, or dot-delimited empty tokens, and rejects wildcards
// (which are only meaningful in subscriptions). See spec.md §4.B.
func validatePublishSubject(subject string) error {
	if err := validateSubjectShape(subject); err != nil {
		return err
	}
	for _, tok := range strings.Split(subject, ".") {
		if tok == "*" || tok == ">" {
			return newErr(ErrBadSubject, "wildcards not allowed in publish subject %q", subject)
		}
	}
	return nil
}

// validateSubscribeSubject allows the single-token "*" wildcard and a
// terminal ">" wildcard, per spec.md's GLOSSARY definition of Subject.
func validateSubscribeSubject(subject string) error {
	if err := validateSubjectShape(subject); err != nil {
		return err
	}
	toks := strings.Split(subject, ".")
	for i, tok := range toks {
		if tok == ">" && i != len(toks)-1 {
			return newErr(ErrBadSubject, "'>' wildcard must be the final token in %q", subject)
		}
	}
	return nil
}

func validateSubjectShape(subject string) error {
	if subject == "" {
		return newErr(ErrBadSubject, "subject may not be empty")
	}
	for _, r := range subject {
		switch r {
		case ' ', '\t', '\r', '\n':
			return newErr(ErrBadSubject, "subject %q contains whitespace", subject)
		}
	}
	for _, tok := range strings.Split(subject, ".") {
		if tok == "" {
			return newErr(ErrBadSubject, "subject %q has an empty token", subject)
		}
	}
	return nil
}
