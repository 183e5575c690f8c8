package http

import (
	"net/http"

	"github.com/dkeye/RoomCounter/internal/app"
	"github.com/dkeye/RoomCounter/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// roomsAPI is a read-only view of the registry. Reads go through the loop.
type roomsAPI struct {
	loop *app.Loop
}

// GET /api/rooms
func (a *roomsAPI) list(c *gin.Context) {
	rooms, err := a.loop.ListRooms(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rooms unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GET /api/rooms/:id
func (a *roomsAPI) get(c *gin.Context) {
	id := domain.RoomID(c.Param("id"))
	snap, ok, err := a.loop.RoomSnapshot(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(id)).Msg("room snapshot")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rooms unavailable"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
