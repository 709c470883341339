package socket

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/go-pg/pg/v10"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/app/models"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/game"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/judge"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/queries"
)

// broadcaster fans session events out to the socket.io room that mirrors the
// session's room code.
type broadcaster struct {
	server *socketio.Server
	db     *pg.DB
}

func (b *broadcaster) Broadcast(code string, ev game.Event) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		log.WithField("event", ev.Name).WithError(err).Error("event marshal failed")
		return
	}
	b.server.BroadcastToRoom("/", code, ev.Name, string(payload))

	if ev.Name == game.EvGameOver {
		go func() {
			if err := queries.SetGameStatus(code, "finished", b.db); err != nil {
				log.WithField("game", code).WithError(err).Warn("failed to mark game finished")
			}
			queries.CleanupGame(code, b.db)
		}()
	}
}

// CreateSocketIOServer runs the realtime transport: player commands come in
// as socket events, get handed to the session's runner, and resulting state
// diffs are broadcast to the room. Rejections go back to the sender only.
func CreateSocketIOServer(reg *game.Registry, db *pg.DB) {
	server, err := socketio.NewServer(nil)
	if err != nil {
		panic(err)
	}
	reg.SetSink(&broadcaster{server: server, db: db})

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		return nil
	})

	server.OnEvent("/", "join-game", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		gameID, userID := result["game_id"], result["user_id"]
		if gameID == "" || userID == "" {
			fail(s, "Missing game or user")
			return
		}
		room, err := queries.GetGame(gameID, db)
		if err != nil {
			fail(s, "Invalid game")
			return
		}
		if room.Status != "waiting" {
			fail(s, "Game already started")
			return
		}
		user, err := queries.GetUserData(userID, db)
		if err != nil {
			fail(s, "User retrieval failed")
			return
		}
		if err := queries.CreatePlayer(models.Player{
			Game_id:  gameID,
			User_id:  userID,
			Username: user.Email,
			Avatar:   result["avatar"],
		}, db); err != nil {
			fail(s, "Failed creating player")
			return
		}

		server.BroadcastToRoom("/", gameID, "player-join")
		s.Join(gameID)
		s.Emit("joined-game", strconv.Itoa(server.RoomLen("/", gameID)))
	})

	server.OnEvent("/", "leave-game", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		s.Leave(result["game_id"])
		if err := queries.DeletePlayer(result["user_id"], result["game_id"], db); err != nil {
			log.WithError(err).Warn("failed to remove player row")
		}
		server.BroadcastToRoom("/", result["game_id"], "player-left")
	})

	server.OnEvent("/", "start-game", func(s socketio.Conn, gameID string) {
		players, err := queries.ListPlayers(gameID, db)
		if err != nil || len(players) < 2 {
			fail(s, "Unable to start game")
			return
		}
		seats := make([]game.Seat, 0, len(players))
		for _, p := range players {
			seats = append(seats, game.Seat{UserID: p.User_id, Name: p.Username, Avatar: p.Avatar})
		}
		runner, err := reg.Create(uuid.NewV4().String(), gameID, seats)
		if err != nil {
			fail(s, "Game already running")
			return
		}
		if err := queries.SetGameStatus(gameID, "in-progress", db); err != nil {
			log.WithField("game", gameID).WithError(err).Warn("failed to mark game in progress")
		}

		roster, err := json.Marshal(rosterDtos(runner.Session()))
		if err != nil {
			log.WithError(err).Error("roster marshal failed")
			return
		}
		server.BroadcastToRoom("/", gameID, "game-start", string(roster))
		server.BroadcastToRoom("/", gameID, game.EvChangeTurn, runner.Session().CurrentPlayer().ID)
	})

	command := func(name string, build func(result map[string]string) game.Command) {
		server.OnEvent("/", name, func(s socketio.Conn, jsonStr string) {
			result := parse(jsonStr)
			runner, err := reg.Get(result["game_id"])
			if err != nil {
				fail(s, "Invalid game")
				return
			}
			if err := runner.Do(build(result)); err != nil {
				s.Emit("error-message", err.Error())
			}
		})
	}

	command("roll-dice", func(r map[string]string) game.Command {
		return game.RollDice{PlayerID: r["user_id"]}
	})
	command("request-buy", func(r map[string]string) game.Command {
		return game.BuyProperty{PlayerID: r["user_id"]}
	})
	command("solve-for-property", func(r map[string]string) game.Command {
		return game.SolveForProperty{PlayerID: r["user_id"]}
	})
	command("submit-solve-code", func(r map[string]string) game.Command {
		return game.SubmitPropertyCode{PlayerID: r["user_id"], Code: r["code"], Language: judge.Language(r["language"])}
	})
	command("pay-rent", func(r map[string]string) game.Command {
		return game.PayRent{PlayerID: r["user_id"]}
	})
	command("start-duel", func(r map[string]string) game.Command {
		return game.StartDuel{PlayerID: r["user_id"]}
	})
	command("submit-duel-code", func(r map[string]string) game.Command {
		return game.SubmitDuelCode{PlayerID: r["user_id"], Code: r["code"], Language: judge.Language(r["language"])}
	})
	command("end-turn", func(r map[string]string) game.Command {
		return game.EndTurn{PlayerID: r["user_id"]}
	})
	command("pay-out-jail", func(r map[string]string) game.Command {
		return game.PayJailFine{PlayerID: r["user_id"]}
	})
	command("buy-house", func(r map[string]string) game.Command {
		pos, err := strconv.Atoi(r["card_pos"])
		if err != nil {
			pos = -1
		}
		return game.BuildHouse{PlayerID: r["user_id"], Position: pos}
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.WithError(e).Warn("socket error")
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		for _, room := range s.Rooms() {
			server.BroadcastToRoom("/", room, "player-left")
		}
		s.LeaveAll()
	})

	go server.Serve()
	defer server.Close()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{os.Getenv("CLIENT_ORIGIN")},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	log.Info("socket server listening on :8000")
	if err := http.ListenAndServe(":8000", c.Handler(mux)); err != nil {
		log.WithError(err).Fatal("socket server stopped")
	}
}

func parse(jsonStr string) map[string]string {
	var result map[string]string
	json.Unmarshal([]byte(jsonStr), &result)
	return result
}

func fail(s socketio.Conn, msg string) {
	s.Emit("error-message", msg)
	s.Emit("failed")
}

func rosterDtos(s *game.Session) []models.PlayerDto {
	dtos := make([]models.PlayerDto, 0, len(s.Players))
	for _, p := range s.Players {
		dtos = append(dtos, models.PlayerDto{
			Username:   p.Name,
			Avatar:     p.Avatar,
			Balance:    p.Money,
			Pos:        p.Position,
			Properties: p.Properties,
			Jail:       p.InJail,
			Active:     p.Active,
		})
	}
	return dtos
}
