package service

import (
	"context"
	"fmt"
	"strings"

	"genie/internal/logger"
	"genie/internal/metrics"
	"genie/internal/model"
)

// Catalog is the read-only property collection queried by the composer
type Catalog interface {
	// Find returns, in catalog order, at most limit items whose location
	// contains location (case-insensitive) and whose type is land when
	// propertyType is land, home otherwise.
	Find(ctx context.Context, location string, propertyType model.PropertyType, limit int) ([]model.Property, error)

	// Get returns the property with the given id, or nil when it does not exist.
	Get(ctx context.Context, id string) (*model.Property, error)
}

var refinementAnswers = []string{"closer to schools", "newer builds", "larger plots"}

var (
	refinementOptions = []string{"Closer to schools", "Newer builds", "Larger plots"}
	followUpOptions   = []string{"View more details", "Change area", "Change budget"}
)

// Composition is what the composer produced for a turn. Question is set when
// the outcome is a clarification instead of a result list.
type Composition struct {
	Messages []model.Message
	Question *model.PendingQuestion
	Results  int
}

// ResultComposer turns resolved slots into result messages
type ResultComposer struct {
	catalog Catalog
	limit   int
	logger  logger.Logger
}

// NewResultComposer creates a composer that shows at most limit results
func NewResultComposer(catalog Catalog, limit int, log logger.Logger) *ResultComposer {
	if limit <= 0 {
		limit = 3
	}
	return &ResultComposer{
		catalog: catalog,
		limit:   limit,
		logger:  log,
	}
}

// Compose filters the catalog by state and renders the reply for mode
func (c *ResultComposer) Compose(ctx context.Context, state model.ConversationState, mode model.Mode, utterance string) Composition {
	propertyType := state.PropertyType
	if propertyType != model.PropertyTypeLand {
		propertyType = model.PropertyTypeHome
	}

	results, err := c.catalog.Find(ctx, state.Location, propertyType, c.limit)
	if err != nil {
		c.logger.WithError(err).Warn("catalog lookup failed, treating as no results", map[string]interface{}{
			"location":     state.Location,
			"propertyType": propertyType,
		})
		results = nil
	}
	if len(results) > c.limit {
		results = results[:c.limit]
	}
	metrics.ResultsReturned.Observe(float64(len(results)))

	if len(results) == 0 && mode == model.ModeDiscovery {
		options := append([]string(nil), adjustSearchOptions...)
		return Composition{
			Messages: []model.Message{{
				Role:    model.RoleAI,
				Kind:    model.MessageKindOptions,
				Mode:    mode,
				Text:    fmt.Sprintf("I couldn't find any %s listings in %s that match. How would you like to adjust your search?", describeType(propertyType), state.Location),
				Options: options,
			}},
			Question: &model.PendingQuestion{
				Kind:    model.QuestionAdjustSearch,
				Options: options,
				Context: state,
			},
		}
	}

	messages := make([]model.Message, 0, len(results)+2)
	messages = append(messages, model.Message{
		Role: model.RoleAI,
		Kind: model.MessageKindText,
		Mode: mode,
		Text: fmt.Sprintf("Here are some %s options in %s:", describeType(propertyType), state.Location),
	})

	for _, p := range results {
		match := matchProperty(p, state)
		messages = append(messages, model.Message{
			Role:     model.RoleAI,
			Kind:     model.MessageKindProperty,
			Mode:     mode,
			Property: &match,
		})
	}

	options := refinementOptions
	if IsRefinementAnswer(utterance) {
		options = followUpOptions
	}
	messages = append(messages, model.Message{
		Role:    model.RoleAI,
		Kind:    model.MessageKindOptions,
		Mode:    mode,
		Text:    "Would you like me to refine these results?",
		Options: append([]string(nil), options...),
	})

	return Composition{Messages: messages, Results: len(results)}
}

// IsRefinementAnswer reports whether utterance picks one of the refinement prompts
func IsRefinementAnswer(utterance string) bool {
	return containsAny(strings.ToLower(utterance), refinementAnswers)
}

func describeType(t model.PropertyType) string {
	if t == model.PropertyTypeLand {
		return "land"
	}
	return "home"
}
