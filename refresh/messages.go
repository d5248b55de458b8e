package refresh

import (
	"context"

	"github.com/google/uuid"

	"skycast/api"
)

// Messages routed through Controller.Update.
type (
	// tickMsg fires once per period of a live loop.
	tickMsg struct {
		kind   Kind
		loopID uuid.UUID
	}

	// retryMsg is the one-shot delayed retry of a failed fetch.
	retryMsg struct {
		kind  Kind
		token uuid.UUID
		ctx   context.Context
	}

	// fetchedMsg carries the outcome of one fetch.
	fetchedMsg struct {
		kind     Kind
		ctx      context.Context
		weather  *api.Weather
		articles []api.Article
		err      error
	}

	// refreshAllMsg carries both outcomes of a RefreshAll once both are in.
	refreshAllMsg struct {
		weather fetchedMsg
		news    fetchedMsg
	}
)
