package app

import "mendikot/internal/domain"

// SeatsToStart is the number of occupied seats (humans or bots) needed to deal.
const SeatsToStart = domain.SeatCount
