package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrWrongPhase         = errors.New("operation not allowed in current phase")
	ErrNoReserves         = errors.New("no units left in reserve")
	ErrInvalidPlacement   = errors.New("invalid placement")
	ErrReservesRemaining  = errors.New("all reserve units must be placed before the battle starts")
	ErrRosterFull         = errors.New("roster is full")
	ErrUnknownReserveKind = errors.New("unknown reserve")
)

// Advance accumulates frame time and resolves at most one turn once the turn
// interval has elapsed. The timer restarts from zero, so a long frame never
// produces a burst of turns. Returns nil when no turn ran.
func (bs *BattleState) Advance(dt float64, config *BattleConfig) *TurnRecord {
	if bs.Phase != PhaseBattle {
		return nil
	}
	if dt > 0 {
		bs.TurnTimer += dt
	}
	if bs.TurnTimer < bs.TurnInterval {
		return nil
	}
	bs.TurnTimer = 0
	record := bs.ResolveTurn(config)
	return &record
}

// ResolveTurn runs one full turn: every living unit, in roster order, either
// strikes an adjacent enemy or steps toward its nearest one
func (bs *BattleState) ResolveTurn(config *BattleConfig) TurnRecord {
	bs.Units.Sort()
	bs.Turn++

	record := TurnRecord{
		Number:    bs.Turn,
		Actions:   []UnitAction{},
		Timestamp: time.Now().Unix(),
	}
	terrain := TerrainDistance(bs.Grid)

	for i := range bs.Units {
		if !bs.Units[i].Alive {
			continue
		}
		record.Actions = append(record.Actions, bs.actUnit(i, terrain))
	}

	bs.checkVictory(config)
	record.RedAlive = bs.Units.AliveCount(TeamRed)
	record.BlueAlive = bs.Units.AliveCount(TeamBlue)
	record.Outcome = bs.Outcome

	bs.History = append(bs.History, record)
	bs.TotalTurns++
	bs.refreshViews()
	return record
}

func (bs *BattleState) actUnit(i int, terrain DistanceFunc) UnitAction {
	u := &bs.Units[i]
	action := UnitAction{
		UnitID:   u.ID,
		Team:     u.Team,
		Action:   ActionHold,
		From:     u.Pos,
		To:       u.Pos,
		TargetID: NotFound,
	}

	target, _ := bs.findNearestEnemy(i, terrain)
	if target == NotFound {
		return action
	}
	enemy := &bs.Units[target]
	action.TargetID = enemy.ID

	if ManhattanDistance(u.Pos, enemy.Pos) == 1 {
		enemy.HP -= u.Attack
		if enemy.HP <= 0 {
			enemy.HP = 0
			enemy.Alive = false
			action.Killed = true
		}
		action.Action = ActionAttack
		action.Damage = u.Attack
		action.TargetHP = enemy.HP
		return action
	}

	occ := NewOccupancy(bs.Grid, bs.Units, u.Pos, enemy.Pos)
	next := NextStepToward(occ, u.Pos, enemy.Pos, terrain)
	if next != u.Pos {
		u.Pos = next
		action.Action = ActionMove
		action.To = next
	}
	return action
}

// FindNearestEnemy returns the roster index of the closest living enemy of
// the unit at index i, measured around obstacles, and its distance. Enemies
// that cannot be reached are ignored. Ties go to the earliest roster entry.
func (bs *BattleState) FindNearestEnemy(i int) (int, int) {
	return bs.findNearestEnemy(i, TerrainDistance(bs.Grid))
}

func (bs *BattleState) findNearestEnemy(i int, distance DistanceFunc) (int, int) {
	if i < 0 || i >= len(bs.Units) {
		return NotFound, NotFound
	}
	u := bs.Units[i]
	best, bestDist := NotFound, NotFound
	for j, other := range bs.Units {
		if !other.Alive || other.Team == u.Team {
			continue
		}
		d := distance(u.Pos, other.Pos)
		if d == NotFound {
			continue
		}
		if bestDist == NotFound || d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

func (bs *BattleState) checkVictory(config *BattleConfig) {
	red := bs.Units.AliveCount(TeamRed)
	blue := bs.Units.AliveCount(TeamBlue)
	if red > 0 && blue > 0 {
		return
	}

	msgs := messagesFor(config)
	bs.Phase = PhaseGameOver
	switch {
	case red == 0 && blue == 0:
		bs.Outcome = OutcomeDraw
		bs.Message = msgs.Draw
	case red > 0:
		bs.Outcome = OutcomeRed
		bs.Message = msgs.RedWins
	default:
		bs.Outcome = OutcomeBlue
		bs.Message = msgs.BlueWins
	}
}

// PlaceUnit takes one unit from the reserve at index and puts it on the board
// for the blue team. Only allowed while placing.
func (bs *BattleState) PlaceUnit(reserve int, pos Position, config *BattleConfig) (*Unit, error) {
	if bs.Phase != PhasePlacing {
		return nil, fmt.Errorf("place unit: %w (phase %s)", ErrWrongPhase, bs.Phase)
	}
	if reserve < 0 || reserve >= len(bs.Reserves) {
		return nil, fmt.Errorf("place unit: %w: index %d", ErrUnknownReserveKind, reserve)
	}
	r := &bs.Reserves[reserve]
	if r.Count <= 0 {
		return nil, fmt.Errorf("place unit: %w: %s", ErrNoReserves, r.Kind)
	}
	if bs.Grid.Blocked(pos) {
		return nil, fmt.Errorf("place unit: %w: (%d,%d) is blocked", ErrInvalidPlacement, pos.X, pos.Y)
	}
	if bs.Units.IndexAt(pos) != NotFound {
		return nil, fmt.Errorf("place unit: %w: (%d,%d) is occupied", ErrInvalidPlacement, pos.X, pos.Y)
	}
	if bs.MaxUnits > 0 && len(bs.Units) >= bs.MaxUnits {
		return nil, fmt.Errorf("place unit: %w (%d units)", ErrRosterFull, bs.MaxUnits)
	}

	r.Count--
	bs.Units = append(bs.Units, bs.newUnit(TeamBlue, r.Kind, r.HP, r.Attack, pos))
	if bs.ReservesRemaining() == 0 {
		bs.Message = messagesFor(config).Ready
	}
	bs.refreshViews()
	return &bs.Units[len(bs.Units)-1], nil
}

// ReservesRemaining returns how many units are still waiting to be placed
func (bs *BattleState) ReservesRemaining() int {
	n := 0
	for _, r := range bs.Reserves {
		n += r.Count
	}
	return n
}

// StartBattle leaves the placing phase once every reserve has been placed
func (bs *BattleState) StartBattle(config *BattleConfig) error {
	if bs.Phase != PhasePlacing {
		return fmt.Errorf("start battle: %w (phase %s)", ErrWrongPhase, bs.Phase)
	}
	if left := bs.ReservesRemaining(); left > 0 {
		return fmt.Errorf("start battle: %w (%d left)", ErrReservesRemaining, left)
	}
	bs.Phase = PhaseBattle
	bs.TurnTimer = 0
	bs.Message = messagesFor(config).Battle
	return nil
}

// Acknowledge marks a finished battle as seen. Returns false before game over.
func (bs *BattleState) Acknowledge() bool {
	if bs.Phase != PhaseGameOver {
		return false
	}
	bs.Finished = true
	return true
}

func (bs *BattleState) newUnit(team Team, kind string, hp, attack int, pos Position) Unit {
	bs.NextUnitID++
	return Unit{
		ID:     bs.NextUnitID,
		Kind:   kind,
		Team:   team,
		Pos:    pos,
		HP:     hp,
		MaxHP:  hp,
		Attack: attack,
		Alive:  true,
	}
}

func (bs *BattleState) refreshViews() {
	red := bs.Units.Stats(TeamRed)
	blue := bs.Units.Stats(TeamBlue)
	bs.Red = &red
	bs.Blue = &blue
	bs.Balance = AnalyzeBalance(bs)
}

// Clone returns a snapshot that later turns cannot change. Past turn records
// are never modified, so their action lists are shared.
func (bs *BattleState) Clone() *BattleState {
	if bs == nil {
		return nil
	}
	c := *bs
	if bs.Grid != nil {
		c.Grid = bs.Grid.Clone()
	}
	c.Units = bs.Units.Clone()
	if bs.Reserves != nil {
		c.Reserves = append([]Reserve(nil), bs.Reserves...)
	}
	if bs.History != nil {
		c.History = append([]TurnRecord(nil), bs.History...)
	}
	if bs.Red != nil {
		red := *bs.Red
		c.Red = &red
	}
	if bs.Blue != nil {
		blue := *bs.Blue
		c.Blue = &blue
	}
	return &c
}
