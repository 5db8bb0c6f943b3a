package app

// SeatCount is the number of participants in a duel.
const SeatCount = 2

// GameOverMessage is the terminal notice sent to both seats.
const GameOverMessage = "Game over"
