package responders

import (
	"context"
	"fmt"
	"strings"

	"samanainn/internal/chat"
	"samanainn/internal/modules/catalog"
)

const (
	defaultLimit   = 5
	featuredLimit  = 3
	shownTitles    = 3
	questionCount  = 3
	recommendIntro = "Basándome en tus preferencias, te recomiendo "
	compareFormat  = "¿Cuál es la diferencia entre %s y %s?"
)

type lookup func(ctx context.Context, f catalog.Filters) ([]catalog.Record, error)

// searchWithFallback runs the filtered query and, when it is empty, one
// featured-only query. The bool reports whether the fallback produced the rows.
func searchWithFallback(ctx context.Context, q lookup, f catalog.Filters) ([]catalog.Record, bool, error) {
	if f.Limit == 0 {
		f.Limit = defaultLimit
	}
	results, err := q(ctx, f)
	if err != nil {
		return nil, false, err
	}
	if len(results) > 0 {
		return results, false, nil
	}
	results, err = q(ctx, catalog.Filters{IsFeatured: true, Limit: featuredLimit})
	if err != nil {
		return nil, false, err
	}
	return results, true, nil
}

// deck holds the wording of one recommendation flavour.
type deck struct {
	intro        string
	fallbackLead string
	singular     string // format, title
	singularTail string
	pluralLead   string
	pluralTail   string
	describe     string // format, title and short description
	quoteTitles  bool
	closing      string
}

func (d deck) compose(results []catalog.Record, fromFallback bool) string {
	var sb strings.Builder
	if fromFallback {
		sb.WriteString(d.fallbackLead)
		sb.WriteString(" ")
	} else {
		sb.WriteString(d.intro)
	}

	first := results[0]
	if len(results) == 1 {
		fmt.Fprintf(&sb, d.singular, first.Title)
		sb.WriteString(". ")
		if first.ShortDesc != "" {
			sb.WriteString(first.ShortDesc)
			sb.WriteString(" ")
		}
		sb.WriteString(d.singularTail)
	} else {
		sb.WriteString(d.pluralLead)
		sb.WriteString(joinTitles(titles(results, shownTitles, d.quoteTitles)))
		sb.WriteString(". ")
		sb.WriteString(d.pluralTail)
		if first.ShortDesc != "" {
			fmt.Fprintf(&sb, d.describe, first.Title, first.ShortDesc)
		}
	}
	sb.WriteString(d.closing)
	return sb.String()
}

func titles(results []catalog.Record, max int, quoted bool) []string {
	if len(results) > max {
		results = results[:max]
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
		if quoted {
			out[i] = quote(r.Title)
		}
	}
	return out
}

func quote(s string) string { return `"` + s + `"` }

// joinTitles renders "A", "A y B" or "A, B y C".
func joinTitles(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " y " + items[len(items)-1]
}

// questionSet builds exactly three follow-ups: one about the first result,
// a comparison when there are two or more, then pool fillers in order.
type questionSet struct {
	first string // format, title
	pool  []string
}

func (q questionSet) build(results []catalog.Record) []string {
	var lead []string
	if len(results) > 0 && q.first != "" {
		lead = append(lead, fmt.Sprintf(q.first, results[0].Title))
	}
	if len(results) > 1 {
		lead = append(lead, fmt.Sprintf(compareFormat, results[0].Title, results[1].Title))
	}
	return fillQuestions(lead, q.pool, questionCount)
}

// fillQuestions appends pool entries not already chosen until n are present.
func fillQuestions(chosen, pool []string, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	add := func(s string) {
		if len(out) == n || s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range chosen {
		add(s)
	}
	for _, s := range pool {
		add(s)
	}
	return out
}

// listingUI is the directive bag every recommendation branch shares.
func listingUI(results []catalog.Record, resultType string, banner chat.BannerType, title string, questions []string) *chat.UI {
	ui := &chat.UI{
		UpdateBanner:       true,
		BannerType:         banner,
		BannerTitle:        title,
		ShowResults:        len(results) > 0,
		ResultType:         resultType,
		SuggestedQuestions: questions,
	}
	if len(results) > 0 {
		ui.BannerImage = results[0].FirstImage()
	}
	return ui
}

// noResults is the terminal reply after the featured fallback came back empty too.
func noResults(msg string, banner chat.BannerType, questions []string) chat.Response {
	return chat.Response{
		Message: msg,
		UI: &chat.UI{
			BannerType:         banner,
			SuggestedQuestions: questions,
		},
	}
}

// fixedText is a canned reply with banner and follow-ups.
func fixedText(msg string, banner chat.BannerType, title string, questions []string) chat.Response {
	return chat.Response{
		Message: msg,
		UI: &chat.UI{
			UpdateBanner:       true,
			BannerType:         banner,
			BannerTitle:        title,
			SuggestedQuestions: questions,
		},
	}
}

func lastSearch(kind string, params map[string]string, count int) *chat.LastSearch {
	return &chat.LastSearch{Type: kind, Params: params, ResultCount: count}
}

// compactParams drops empty values so persisted context stays small.
func compactParams(kv ...string) map[string]string {
	out := make(map[string]string)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			out[kv[i]] = kv[i+1]
		}
	}
	return out
}
