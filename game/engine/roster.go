package engine

import "sort"

// Roster holds every unit that took part in the battle. Dead units stay in
// the roster with Alive=false so history and reports can refer to them.
type Roster []Unit

// UnitLess is the turn order: blue before red, blue from the top of the board
// down, red from the bottom up.
func UnitLess(a, b Unit) bool {
	if a.Team != b.Team {
		return a.Team == TeamBlue
	}
	if a.Team == TeamBlue {
		return a.Pos.Y < b.Pos.Y
	}
	return a.Pos.Y > b.Pos.Y
}

// Sort orders the roster for the next turn. Units that compare equal keep
// their relative order.
func (r Roster) Sort() {
	sort.SliceStable(r, func(i, j int) bool {
		return UnitLess(r[i], r[j])
	})
}

// AliveCount returns the number of living units on a team
func (r Roster) AliveCount(team Team) int {
	n := 0
	for _, u := range r {
		if u.Alive && u.Team == team {
			n++
		}
	}
	return n
}

// Stats summarizes a team
func (r Roster) Stats(team Team) TeamStats {
	stats := TeamStats{Team: team}
	for _, u := range r {
		if u.Team != team {
			continue
		}
		if u.Alive {
			stats.Alive++
			stats.TotalHP += u.HP
		} else {
			stats.Fallen++
		}
	}
	return stats
}

// ByTeam returns the living units of a team in roster order
func (r Roster) ByTeam(team Team) []Unit {
	var out []Unit
	for _, u := range r {
		if u.Alive && u.Team == team {
			out = append(out, u)
		}
	}
	return out
}

// IndexAt returns the roster index of the living unit standing on p, or NotFound
func (r Roster) IndexAt(p Position) int {
	for i, u := range r {
		if u.Alive && u.Pos == p {
			return i
		}
	}
	return NotFound
}

// IndexOf returns the roster index of the unit with the given id, or NotFound
func (r Roster) IndexOf(id int) int {
	for i, u := range r {
		if u.ID == id {
			return i
		}
	}
	return NotFound
}

// Clone returns an independent copy of the roster
func (r Roster) Clone() Roster {
	if r == nil {
		return nil
	}
	c := make(Roster, len(r))
	copy(c, r)
	return c
}
