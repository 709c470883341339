package queries

import (
	"fmt"

	"github.com/go-pg/pg/v10"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/app/models"
)

func VerifyGame(id string, db *pg.DB) bool {
	game := &models.Game{Id: id}
	return db.Model(game).WherePK().Select() == nil
}

func GetGame(id string, db *pg.DB) (*models.Game, error) {
	game := &models.Game{Id: id}
	if err := db.Model(game).WherePK().Select(); err != nil {
		return nil, err
	}
	return game, nil
}

func SetGameStatus(id, status string, db *pg.DB) error {
	game := &models.Game{Id: id}
	_, err := db.Model(game).WherePK().Set("status = ?", status).Update()
	return err
}

func GetUserData(userID string, db *pg.DB) (*models.User, error) {
	user := &models.User{Id: userID}
	if err := db.Model(user).WherePK().Select(); err != nil {
		return nil, err
	}
	return user, nil
}

func CreatePlayer(player models.Player, db *pg.DB) error {
	_, err := db.Model(&player).Insert()
	return err
}

func DeletePlayer(userID, gameID string, db *pg.DB) error {
	player := new(models.Player)
	_, err := db.Model(player).Where("user_id = ? and game_id = ?", userID, gameID).Delete()
	return err
}

func ListPlayers(gameID string, db *pg.DB) ([]models.Player, error) {
	var players []models.Player
	if err := db.Model(&players).Where("game_id = ?", gameID).Select(); err != nil {
		return nil, err
	}
	return players, nil
}

// CleanupGame removes the room record and its membership rows once a match
// is over or abandoned.
func CleanupGame(gameID string, db *pg.DB) {
	player := new(models.Player)
	game := new(models.Game)
	db.Model(player).Where("game_id = ?", gameID).Delete()
	db.Model(game).Where("id = ?", gameID).Delete()
}

// SeedProblems fills the catalog table from the embedded set when empty.
func SeedProblems(ps []models.Problem, db *pg.DB) error {
	count, err := db.Model((*models.Problem)(nil)).Count()
	if err != nil {
		return fmt.Errorf("counting problems: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, p := range ps {
		p := p
		if _, err := db.Model(&p).Insert(); err != nil {
			return fmt.Errorf("seeding problem %q: %w", p.Id, err)
		}
	}
	return nil
}
