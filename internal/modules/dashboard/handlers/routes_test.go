package handlers

import (
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/pulse/internal/modules/dashboard"
	testutil "github.com/aristath/pulse/internal/testing"
)

func TestRegisterRoutes(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	service := dashboard.NewService(dashboard.DefaultEngine(), testutil.NewHistoryRepository(t), nil, nil, logger)
	handler := NewHandler(service, logger)

	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}
