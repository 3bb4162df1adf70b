package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/cache"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/repository"
	"github.com/rs/zerolog/log"
)

const leaderboardTTL = time.Hour

// LeaderboardService ranks students by the sum of their best scores across
// all exams, optionally scoped to one course. The public board is cache-first
// with a fixed TTL; a single student's rank is always recomputed because it
// serves one dashboard widget, not the hot read path.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, courseID *uint, limit int) ([]dto.LeaderboardEntryDTO, error)
	GetStudentRank(ctx context.Context, studentID uint, courseID *uint) (*dto.LeaderboardEntryDTO, error)
}

type leaderboardService struct {
	resultRepo repository.ExamResultRepository
	cache      cache.Cache
}

func NewLeaderboardService(resultRepo repository.ExamResultRepository, c cache.Cache) LeaderboardService {
	return &leaderboardService{resultRepo: resultRepo, cache: c}
}

func leaderboardKey(courseID *uint) string {
	if courseID != nil {
		return cache.LeaderboardCourseKey(*courseID)
	}
	return cache.LeaderboardGlobalKey()
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, courseID *uint, limit int) ([]dto.LeaderboardEntryDTO, error) {
	key := leaderboardKey(courseID)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var entries []dto.LeaderboardEntryDTO
		if err := json.Unmarshal([]byte(raw), &entries); err == nil {
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			return entries, nil
		}
		log.Warn().Str("key", key).Msg("GetLeaderboard: discarding corrupt cached board")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("cache error loading leaderboard: %w", err)
	}

	entries, err := s.rankAll(courseID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, string(payload), leaderboardTTL); err != nil {
		log.Error().Err(err).Str("key", key).Msg("GetLeaderboard: failed to cache board")
	}
	return entries, nil
}

func (s *leaderboardService) GetStudentRank(ctx context.Context, studentID uint, courseID *uint) (*dto.LeaderboardEntryDTO, error) {
	entries, err := s.rankAll(courseID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].StudentID == studentID {
			return &entries[i], nil
		}
	}
	// No scored results in scope.
	return nil, nil
}

func (s *leaderboardService) rankAll(courseID *uint) ([]dto.LeaderboardEntryDTO, error) {
	rows, err := s.resultRepo.AggregateTotals(courseID)
	if err != nil {
		log.Error().Err(err).Msg("Leaderboard aggregation failed")
		return nil, fmt.Errorf("error aggregating leaderboard: %w", err)
	}
	return denseRank(rows), nil
}

// denseRank assigns ranks over rows already sorted by descending total score.
// Ties share a rank and the next distinct score takes rank+1.
func denseRank(rows []repository.StudentTotal) []dto.LeaderboardEntryDTO {
	entries := make([]dto.LeaderboardEntryDTO, 0, len(rows))
	rank := 0
	prevScore := 0
	for i, row := range rows {
		if i == 0 || row.TotalScore != prevScore {
			rank++
			prevScore = row.TotalScore
		}
		entries = append(entries, dto.LeaderboardEntryDTO{
			Rank:        rank,
			StudentID:   row.StudentID,
			StudentName: row.StudentName,
			TotalScore:  row.TotalScore,
		})
	}
	return entries
}
