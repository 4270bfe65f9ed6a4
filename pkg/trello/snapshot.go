package trello

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Snapshot is the immutable in-memory form of one exported Trello board.
// Lists, cards and comments keep the board's ordering; archived lists and
// cards are dropped at load time.
type Snapshot struct {
	BoardID string
	Lists   []List
}

type List struct {
	ID    string
	Name  string
	Cards []Card
}

type Card struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
	Comments    []Comment
}

type Comment struct {
	ID             string
	AuthorName     string
	AuthorUsername string
	Text           string
	CreatedAt      time.Time
}

// ValidationError marks a snapshot that cannot be migrated. It is fatal to
// the run and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s", e.Reason)
}

// Raw structures of the Trello backup JSON written by the export step.
type backupBoard struct {
	ID    string       `json:"id"`
	Lists []backupList `json:"lists"`
	Cards []backupCard `json:"cards"`
}

type backupList struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Pos    float64 `json:"pos"`
	Closed bool    `json:"closed"`
}

type backupCard struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Desc    string         `json:"desc"`
	Pos     float64        `json:"pos"`
	Closed  bool           `json:"closed"`
	IDList  string         `json:"idList"`
	Actions []backupAction `json:"actions"`
}

type backupAction struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Date time.Time `json:"date"`
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
	MemberCreator struct {
		FullName string `json:"fullName"`
		Username string `json:"username"`
	} `json:"memberCreator"`
}

// Load reads a Trello backup JSON file and normalizes it into a Snapshot.
func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a Snapshot from backup JSON bytes.
func Parse(raw []byte) (*Snapshot, error) {
	var board backupBoard
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("malformed backup JSON: %v", err)}
	}
	if board.ID == "" {
		return nil, &ValidationError{Reason: "missing board id"}
	}
	if len(board.Lists) == 0 {
		return nil, &ValidationError{Reason: "board has no lists"}
	}

	knownLists := make(map[string]bool, len(board.Lists))
	for _, l := range board.Lists {
		knownLists[l.ID] = true
	}

	cardsByList := make(map[string][]backupCard)
	for _, c := range board.Cards {
		if c.Closed {
			continue
		}
		if strings.TrimSpace(c.Name) == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("card %s has an empty title", c.ID)}
		}
		if !knownLists[c.IDList] {
			return nil, &ValidationError{Reason: fmt.Sprintf("card %s references unknown list %s", c.ID, c.IDList)}
		}
		cardsByList[c.IDList] = append(cardsByList[c.IDList], c)
	}

	sortedLists := make([]backupList, len(board.Lists))
	copy(sortedLists, board.Lists)
	sort.SliceStable(sortedLists, func(i, j int) bool {
		return sortedLists[i].Pos < sortedLists[j].Pos
	})

	snapshot := &Snapshot{BoardID: board.ID}
	for _, l := range sortedLists {
		if l.Closed {
			continue
		}
		list := List{ID: l.ID, Name: l.Name}

		cards := cardsByList[l.ID]
		sort.SliceStable(cards, func(i, j int) bool {
			return cards[i].Pos < cards[j].Pos
		})
		for _, c := range cards {
			list.Cards = append(list.Cards, Card{
				ID:          c.ID,
				Title:       c.Name,
				Description: c.Desc,
				CreatedAt:   idTimestamp(c.ID),
				Comments:    commentsOf(c),
			})
		}
		snapshot.Lists = append(snapshot.Lists, list)
	}

	return snapshot, nil
}

// FilterLists returns a snapshot restricted to the named lists, preserving
// order. An empty filter keeps everything.
func (s *Snapshot) FilterLists(names []string) *Snapshot {
	if len(names) == 0 {
		return s
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = true
	}
	out := &Snapshot{BoardID: s.BoardID}
	for _, l := range s.Lists {
		if wanted[strings.ToLower(strings.TrimSpace(l.Name))] {
			out.Lists = append(out.Lists, l)
		}
	}
	return out
}

func commentsOf(c backupCard) []Comment {
	var comments []Comment
	for _, a := range c.Actions {
		if a.Type != "commentCard" {
			continue
		}
		text := strings.TrimSpace(a.Data.Text)
		if text == "" {
			continue
		}
		author := a.MemberCreator.FullName
		if author == "" {
			author = "Unknown"
		}
		comments = append(comments, Comment{
			ID:             a.ID,
			AuthorName:     author,
			AuthorUsername: a.MemberCreator.Username,
			Text:           text,
			CreatedAt:      a.Date,
		})
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments
}

// idTimestamp recovers the creation time embedded in a Trello object id:
// the first 8 hex characters are a unix timestamp.
func idTimestamp(id string) time.Time {
	if len(id) < 8 {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(id[:8], 16, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
