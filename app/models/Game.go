package models

type Game struct {
	Id     string
	Name   string
	Status string // waiting | in-progress | finished
}

type GameCreateDto struct {
	Name string
}

type VerifyGameDto struct {
	Code    string
	User_id string
}
