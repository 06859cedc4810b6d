package viewmodel

// GameOption is a game the home page offers.
type GameOption struct {
	Variant     string
	Title       string
	Description string
}

// HomePage holds data for the landing page.
type HomePage struct {
	Title  string
	Games  []GameOption
	GameID string
	Error  string
}

// SessionPage holds data for the main session page template.
type SessionPage struct {
	Title     string
	SessionID string
	Variant   string
	ShareURL  string
	CanPlay   bool
	Board     Board
}

// Board holds data for the live board fragment.
type Board struct {
	SessionID  string
	Variant    string
	Lifecycle  string
	Score      int
	RoundIndex int
	Clock      string
	Paused     bool
	Ended      bool
	CanPlay    bool
	BoardKey   string
	Pairs      *PairsBoard
	Memorize   *MemorizeBoard
}

// Card is the face of a stack's top card.
type Card struct {
	ID      string
	Content string
	IsImage bool
}

// PairsBoard holds the Pair-or-No-Pair part of the board.
type PairsBoard struct {
	Phase      string
	SubPhase   string
	Left       *Card
	Right      *Card
	Remaining  int
	TotalPairs int
	Correct    int
	Feedback   string
	CanAnswer  bool
}

// Tile is one image in the memorize grid.
type Tile struct {
	ID       string
	Src      string
	Label    string
	Selected bool
	Target   bool
}

// MemorizeBoard holds the Watch-and-Memorize part of the board.
type MemorizeBoard struct {
	Phase       string
	Tiles       []Tile
	ShowCount   int
	Selected    int
	Correct     int
	Wrong       int
	Delta       int
	HasResult   bool
	CanSubmit   bool
	CanContinue bool
}
