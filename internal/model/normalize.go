package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns a copy of rec with every free-text field NFC-normalized and
// trimmed. Priority, Effort and Status are closed enums and pass through
// unchanged so validation sees exactly what the caller sent. Slices are copied
// so the caller's value is never modified.
//
// Two producers emitting the same text in different Unicode compositions end up
// with identical stored bytes.
func Normalize(rec Recommendation) Recommendation {
	out := rec
	out.RecID = text(rec.RecID)
	out.RuleID = text(rec.RuleID)
	out.Title = text(rec.Title)
	out.Category = text(rec.Category)
	out.Description = text(rec.Description)
	out.EstimatedTime = text(rec.EstimatedTime)
	out.WhyExplanation = text(rec.WhyExplanation)

	if rec.Actions != nil {
		out.Actions = make([]Action, len(rec.Actions))
		for i, a := range rec.Actions {
			out.Actions[i] = Action{
				Step:       a.Step,
				ActionText: text(a.ActionText),
				ActionType: text(a.ActionType),
			}
		}
	}
	if rec.Example != nil {
		out.Example = &Example{
			BeforeExample: text(rec.Example.BeforeExample),
			AfterExample:  text(rec.Example.AfterExample),
		}
	}
	if rec.Resources != nil {
		out.Resources = make([]Resource, len(rec.Resources))
		for i, r := range rec.Resources {
			out.Resources[i] = Resource{Title: text(r.Title), URL: strings.TrimSpace(r.URL)}
		}
	}
	return out
}

func text(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
