package httpapi

import (
	"fmt"

	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/usecase"
)

// rawTableDTO is the wire form of one raw source table: an explicit column
// list plus row objects keyed by column name.
type rawTableDTO struct {
	Columns []string         `json:"columns" validate:"required,min=1"`
	Rows    []map[string]any `json:"rows"`
}

type runRequestDTO struct {
	Label   string                 `json:"label" validate:"required"`
	Sources map[string]rawTableDTO `json:"sources" validate:"required,min=1"`
}

type batchRequestDTO struct {
	Runs       []runRequestDTO `json:"runs" validate:"required,min=1,dive"`
	MaxWorkers int             `json:"max_workers" validate:"gte=0,lte=64"`
}

type snapshotSummaryDTO struct {
	Label         string `json:"label"`
	CreatedAt     string `json:"created_at"`
	Teams         int    `json:"teams"`
	Players       int    `json:"players"`
	Games         int    `json:"games"`
	BetCandidates int    `json:"bet_candidates"`
	MergeFailures int    `json:"merge_failures"`
}

func (dto runRequestDTO) toInput() (usecase.RunInput, error) {
	sources := make(usecase.RawSourceSet, len(dto.Sources))
	for name, tableDTO := range dto.Sources {
		kind := rawtable.SourceKind(name)
		if !kind.Valid() {
			return usecase.RunInput{}, fmt.Errorf("%w: unknown source kind %q", usecase.ErrInvalidInput, name)
		}
		table := rawtable.New(tableDTO.Columns...)
		for _, row := range tableDTO.Rows {
			cloned := make(rawtable.Row, len(row))
			for key, value := range row {
				cloned[key] = value
			}
			table.Append(cloned)
		}
		sources[kind] = table
	}
	return usecase.RunInput{Label: dto.Label, Sources: sources}, nil
}

func (dto batchRequestDTO) toInput() (usecase.BatchInput, error) {
	runs := make([]usecase.RunInput, 0, len(dto.Runs))
	for _, runDTO := range dto.Runs {
		input, err := runDTO.toInput()
		if err != nil {
			return usecase.BatchInput{}, err
		}
		runs = append(runs, input)
	}
	return usecase.BatchInput{Runs: runs, MaxWorkers: dto.MaxWorkers}, nil
}
