package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/kevinaaaquil/digilib/content"
	"github.com/kevinaaaquil/digilib/models"
)

const WikipediaAPI = "https://en.wikipedia.org/w/api.php"

var errNoArticles = errors.New("no article text could be fetched")

// Wikipedia compiles plain-text article extracts for a list of topics into
// one book, paged by section, behind a generated cover page.
type Wikipedia struct {
	content.Meta
	Topics  []string
	Fetcher *Fetcher
	// Endpoint defaults to WikipediaAPI.
	Endpoint string
	// Pause is waited between topic requests.
	Pause  time.Duration
	Logger *slog.Logger
}

func (w Wikipedia) Name() string { return "wikipedia:" + w.ID }

func (w Wikipedia) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

// Fetch skips topics that fail. Only when no topic yields text does it
// return a placeholder and an error.
func (w Wikipedia) Fetch(ctx context.Context) ([]models.Book, error) {
	rule := strings.Repeat("=", 60)
	var parts []string
	for i, topic := range w.Topics {
		if i > 0 && w.Pause > 0 {
			select {
			case <-ctx.Done():
				return []models.Book{content.Placeholder(w.Meta, ctx.Err())}, ctx.Err()
			case <-time.After(w.Pause):
			}
		}
		text, err := w.extract(ctx, topic)
		if err != nil {
			w.logger().Warn("wikipedia topic skipped", "book", w.ID, "topic", topic, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s\n%s\n%s\n\n%s", rule, topic, rule, text))
	}

	err := errNoArticles
	if len(parts) > 0 {
		var b models.Book
		b, err = content.Assemble(content.Scraped{
			Meta:    w.Meta,
			Text:    strings.Join(parts, "\n\n"),
			Chunker: content.Sections(content.SectionTarget),
			Preface: w.preface(),
		})
		if err == nil {
			return []models.Book{b}, nil
		}
	}
	return []models.Book{content.Placeholder(w.Meta, err)}, fmt.Errorf("%s: %w", w.Title, err)
}

func (w Wikipedia) preface() string {
	return fmt.Sprintf(`%s  %s
%s
Author   : %s
Category : %s
Source   : Wikipedia (CC BY-SA 4.0)
Topics   : %s

This e-book collects encyclopedic articles on the core
topics of %q.`,
		w.Cover, strings.ToUpper(w.Title), strings.Repeat("═", 60),
		w.Author, w.Category, strings.Join(w.Topics, ", "), w.Title)
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string          `json:"title"`
			Extract string          `json:"extract"`
			Missing json.RawMessage `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

func (w Wikipedia) extract(ctx context.Context, topic string) (string, error) {
	endpoint := w.Endpoint
	if endpoint == "" {
		endpoint = WikipediaAPI
	}
	q := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"true"},
		"redirects":   {"1"},
		"format":      {"json"},
		"titles":      {topic},
	}
	body, err := w.Fetcher.Get(ctx, endpoint+"?"+q.Encode())
	if err != nil {
		return "", err
	}
	var resp extractResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode extract: %w", err)
	}
	for _, p := range resp.Query.Pages {
		if len(p.Missing) > 0 {
			return "", fmt.Errorf("no article titled %q", topic)
		}
		return p.Extract, nil
	}
	return "", fmt.Errorf("no article titled %q", topic)
}

// EngineeringTexts is the default set of compiled engineering books. They
// are paged by section length, so they carry no chapter metadata; the
// hand-authored editions in engineering.yaml do.
func EngineeringTexts(f *Fetcher, logger *slog.Logger) []Source {
	books := []Wikipedia{
		{
			Meta: content.Meta{ID: "wiki-edct", Title: "Electronic Devices and Circuit Theory", Author: "Boylestad & Nashelsky", Category: "Electronics & Communication", Cover: "⚡"},
			Topics: []string{"Semiconductor device", "P–n junction", "Diode", "Bipolar junction transistor", "MOSFET",
				"Field-effect transistor", "Operational amplifier", "Electronic amplifier", "Electronic oscillator", "Voltage regulator", "Rectifier"},
		},
		{
			Meta: content.Meta{ID: "wiki-bee", Title: "Basics of Electrical Engineering", Author: "V.K. Mehta & Rohit Mehta", Category: "Electrical Engineering", Cover: "🔌"},
			Topics: []string{"Ohm's law", "Electric current", "Electric potential", "Electrical resistance and conductance", "Kirchhoff's circuit laws",
				"Electrical network", "Alternating current", "Electric power", "Transformer", "Electric motor", "Electrical measuring instrument"},
		},
		{
			Meta: content.Meta{ID: "wiki-bee10c", Title: "Basic of Electric Engineering (10 C)", Author: "Educational Board Press", Category: "Electrical Engineering", Cover: "🔋"},
			Topics: []string{"Electricity", "Electric charge", "Electric current", "Voltage", "Electrical resistance and conductance",
				"Series and parallel circuits", "Electromagnetism", "Electromagnetic induction", "Electric battery", "Electrical safety", "Electric power"},
		},
		{
			Meta: content.Meta{ID: "wiki-beece", Title: "Basic Electrical Electronics and Computer Engineering", Author: "R.K. Rajput", Category: "Electrical Engineering", Cover: "💻"},
			Topics: []string{"Digital electronics", "Logic gate", "Boolean algebra", "Number system", "Computer architecture",
				"Flip-flop (electronics)", "Multiplexer", "Analog-to-digital converter", "Modulation", "Integrated circuit", "Computer programming"},
		},
		{
			Meta: content.Meta{ID: "wiki-circuit-theory", Title: "Circuit Theory", Author: "A. Chakrabarti", Category: "Electrical Engineering", Cover: "🔁"},
			Topics: []string{"Network analysis (electrical circuits)", "Thévenin's theorem", "Norton's theorem", "Superposition theorem", "RLC circuit",
				"Resonance", "Electrical impedance", "Laplace transform", "Two-port network", "Mesh analysis", "Nodal analysis"},
		},
	}
	out := make([]Source, len(books))
	for i, b := range books {
		b.Fetcher = f
		b.Pause = 800 * time.Millisecond
		b.Logger = logger
		out[i] = b
	}
	return out
}
