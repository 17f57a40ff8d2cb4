package stats

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/deptsays/internal/model"
	"github.com/verte-zerg/deptsays/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Games       []model.GameRecord
	Departments []model.DepartmentAggregate
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	games, err := st.ListGames(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	depts, err := st.ListDepartmentAggregates(ctx, gameIDs(games))
	if err != nil {
		return Report{}, err
	}
	sort.SliceStable(depts, func(i, j int) bool {
		return depts[i].Corrects-depts[i].Errors > depts[j].Corrects-depts[j].Errors
	})
	return Report{Games: games, Departments: depts}, nil
}

func gameIDs(games []model.GameRecord) []string {
	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids
}

// RenderHistory prints the summary, grade trend, games, and department tables.
// width bounds the trend line and name columns; zero means unbounded.
func RenderHistory(w io.Writer, r Report, window, width int) error {
	if len(r.Games) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}

	wins := 0
	bestScore := 0
	var gradeSum float64
	grades := make([]float64, len(r.Games))
	for i, g := range r.Games {
		if g.Won {
			wins++
		}
		if g.Score > bestScore {
			bestScore = g.Score
		}
		gradeSum += g.Grade
		grades[i] = g.Grade
	}
	count := len(r.Games)
	lines := []string{
		"Summary",
		fmt.Sprintf("Games: %d", count),
		fmt.Sprintf("Wins: %d (%.1f%%)", wins, float64(wins)/float64(count)*100),
		fmt.Sprintf("Avg grade: %.1f", gradeSum/float64(count)),
		fmt.Sprintf("Best score: %d", bestScore),
	}
	trend := MovingAverage(grades, window)
	if width > 0 && len(trend) > width {
		trend = trend[len(trend)-width:]
	}
	lines = append(lines, "Grade trend: ["+Sparkline(trend)+"]", "")

	headers := []string{"Ended", "Result", "Score", "Grade", "Correct", "Errors", "Done"}
	rows := make([][]string, 0, count)
	for _, g := range r.Games {
		result := "lost"
		if g.Won {
			result = "won"
		}
		rows = append(rows, []string{
			g.EndedAt.Local().Format("2006-01-02 15:04"),
			result,
			fmt.Sprintf("%d", g.Score),
			fmt.Sprintf("%.1f", g.Grade),
			fmt.Sprintf("%d", g.TotalCorrect),
			fmt.Sprintf("%d", g.TotalIncorrect),
			fmt.Sprintf("%d/%d", g.Completed, g.Departments),
		})
	}
	lines = append(lines, FormatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true})...)

	if len(r.Departments) > 0 {
		nameWidth := 0
		if width > 0 {
			nameWidth = width / 3
		}
		deptRows := make([][]string, 0, len(r.Departments))
		for _, d := range r.Departments {
			name := d.Name
			if nameWidth > 0 {
				name = Truncate(name, nameWidth)
			}
			deptRows = append(deptRows, []string{
				name,
				fmt.Sprintf("%d", d.Games),
				fmt.Sprintf("%d", d.Completed),
				fmt.Sprintf("%d", d.Corrects),
				fmt.Sprintf("%d", d.Errors),
			})
		}
		lines = append(lines, "", "Departments")
		lines = append(lines, FormatTable([]string{"Department", "Games", "Met", "Correct", "Errors"}, deptRows, map[int]bool{1: true, 2: true, 3: true, 4: true})...)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
