package dto

// LeaderboardEntryDTO is one row of a ranked board. Ranks are dense:
// tied scores share a rank and the next distinct score takes rank+1.
type LeaderboardEntryDTO struct {
	Rank        int    `json:"rank"`
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	TotalScore  int    `json:"total_score"`
}
