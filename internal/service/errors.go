package service

import "errors"

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrPhaseNotFound = errors.New("phase not found")
	ErrNoActivePhase = errors.New("no active phase")
	ErrGameFinished  = errors.New("game is finished")
	ErrWrongPower    = errors.New("power is not playing in this game")
	ErrInvalidInput  = errors.New("invalid input")
)
