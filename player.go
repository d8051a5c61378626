package main

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type IPlayer interface {
	IsHuman() bool
}
