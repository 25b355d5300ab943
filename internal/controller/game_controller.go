package controller

import (
	"errors"
	"strconv"

	"github.com/benbeisheim/quadchess-backend/internal/model"
	"github.com/benbeisheim/quadchess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// errorStatus maps service and engine errors onto HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrOutOfBounds):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.WithFields(log.Fields{"path": c.Path()}).WithError(err).Error("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) ListGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"games": gc.gameService.ListGames(),
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	v, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(v)
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.RemoveGame(c.Params("gameId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LegalMoves answers GET /api/game/:gameId/moves?row=&col=.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	row, rowErr := strconv.Atoi(c.Query("row"))
	col, colErr := strconv.Atoi(c.Query("col"))
	if rowErr != nil || colErr != nil {
		return badRequest(c, "row and col query parameters are required")
	}
	from := model.Position{Row: row, Col: col}
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), from)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"from":  from,
		"moves": moves,
	})
}

func (gc *GameController) Select(c *fiber.Ctx) error {
	var from model.Position
	if err := c.BodyParser(&from); err != nil {
		return badRequest(c, "invalid position")
	}
	v, err := gc.gameService.Select(c.Params("gameId"), from)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(v)
}

func (gc *GameController) Deselect(c *fiber.Ctx) error {
	v, err := gc.gameService.Deselect(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(v)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req model.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid move")
	}
	res, err := gc.gameService.HandleMove(c.Params("gameId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	var body struct {
		Color model.Color `json:"color"`
	}
	if err := c.BodyParser(&body); err != nil || !body.Color.Valid() {
		return badRequest(c, "a valid color is required")
	}
	v, err := gc.gameService.Resign(c.Params("gameId"), body.Color)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(v)
}

func (gc *GameController) History(c *fiber.Ctx) error {
	moves, err := gc.gameService.History(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"moves": moves,
	})
}

func (gc *GameController) Stats(c *fiber.Ctx) error {
	stats, err := gc.gameService.Stats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (gc *GameController) Results(c *fiber.Ctx) error {
	results, err := gc.gameService.RecentResults(c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"results": results,
	})
}

// Register mounts the REST routes on router.
func (gc *GameController) Register(router fiber.Router) {
	router.Get("/games", gc.ListGames)
	router.Get("/stats", gc.Stats)
	router.Get("/results", gc.Results)

	game := router.Group("/game")
	game.Post("/create", gc.CreateGame)
	game.Get("/:gameId", gc.GetGameState)
	game.Delete("/:gameId", gc.DeleteGame)
	game.Get("/:gameId/moves", gc.LegalMoves)
	game.Get("/:gameId/history", gc.History)
	game.Post("/:gameId/select", gc.Select)
	game.Post("/:gameId/deselect", gc.Deselect)
	game.Post("/:gameId/move", gc.MakeMove)
	game.Post("/:gameId/resign", gc.Resign)
}
