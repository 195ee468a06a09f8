package analysis

import (
	"time"

	"github.com/KaramelBytes/reviewlens/internal/table"
	"github.com/sirupsen/logrus"
)

// Note records an analysis that was skipped because a role is unresolved.
type Note struct {
	Feature string `json:"feature"`
	Role    Role   `json:"role"`
	Message string `json:"message"`
}

// Overview describes the data set as a whole.
type Overview struct {
	Source  string   `json:"source"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
	// Completeness is the non-null fraction of all cells.
	Completeness float64    `json:"completeness"`
	TimeStart    *time.Time `json:"time_start,omitempty"`
	TimeEnd      *time.Time `json:"time_end,omitempty"`
}

// Result bundles every output of one analysis pass.
type Result struct {
	Overview        Overview          `json:"overview"`
	Schema          table.Schema      `json:"-"`
	Roles           RoleMap           `json:"roles"`
	Rating          *RatingAggregate  `json:"rating,omitempty"`
	Periods         []PeriodAggregate `json:"periods,omitempty"`
	Products        *Ranking          `json:"products,omitempty"`
	Regions         *Ranking          `json:"regions,omitempty"`
	ProductVolume   []KeyCount        `json:"product_volume,omitempty"`
	RegionVolume    []KeyCount        `json:"region_volume,omitempty"`
	Findings        []Finding         `json:"findings"`
	ProductInsights []ProductInsight  `json:"product_insights,omitempty"`
	Insights        []string          `json:"insights"`
	Recommendations []Recommendation  `json:"recommendations"`
	Notes           []Note            `json:"notes,omitempty"`
}

// Run executes the full pipeline: date preparation, role detection,
// aggregation, anomaly rules, keyword extraction, insights and
// recommendations. Only a nil row set is an error; missing roles become Notes.
func Run(rows *table.RowSet, opt Options) (*Result, error) {
	if rows == nil {
		return nil, ErrNoRowSet
	}
	log := opt.logger().WithField("source", rows.Name)

	coerced := PrepareDates(rows)
	if len(coerced) > 0 {
		log.WithField("columns", coerced).Debug("date columns coerced")
	}
	schema := rows.Schema()
	roles := ClassifyColumns(schema)
	log.WithFields(logrus.Fields{
		"date": roles.Date, "rating": roles.Rating, "product": roles.Product,
		"region": roles.Region, "review_text": roles.ReviewText,
	}).Info("column roles detected")

	res := &Result{Overview: overview(rows), Schema: schema, Roles: roles}
	note := func(feature string, role Role, msg string) {
		res.Notes = append(res.Notes, Note{Feature: feature, Role: role, Message: msg})
		log.WithFields(logrus.Fields{"feature": feature, "role": role.String()}).Warn(msg)
	}

	if roles.Rating != "" {
		if agg, ok := AggregateRating(rows, roles.Rating); ok {
			res.Rating = agg
		} else {
			note("rating analysis", RoleRating, "rating column has no numeric values")
		}
	} else {
		note("rating analysis", RoleRating, "no rating column found")
	}

	if roles.Date != "" {
		res.Periods = AggregateByPeriod(rows, roles.Date, roles.Rating)
	} else {
		note("trend analysis", RoleDate, "no date column found")
	}

	if roles.Product != "" {
		res.ProductVolume = CountByDimension(rows, roles.Product)
		if roles.Rating != "" {
			res.Products = AggregateByDimension(rows, roles.Product, roles.Rating)
		}
	} else {
		note("product analysis", RoleProduct, "no product column found")
	}

	if roles.Region != "" {
		res.RegionVolume = CountByDimension(rows, roles.Region)
		if roles.Rating != "" {
			res.Regions = AggregateByDimension(rows, roles.Region, roles.Rating)
		}
	} else {
		note("region analysis", RoleRegion, "no region column found")
	}

	findings, err := DetectAnomalies(rows, roles, res.Periods, opt)
	if err != nil {
		return nil, err
	}
	res.Findings = findings

	if roles.ReviewText == "" {
		note("keyword extraction", RoleReviewText, "no review text column found")
	}
	if roles.Product != "" && roles.Rating != "" {
		pos, neg := opt.dictionaries()
		res.ProductInsights = ExtractProductInsights(rows, roles.Product, roles.Rating, roles.ReviewText, pos, neg, opt)
	}

	res.Insights = SynthesizeInsights(res.Rating, res.Findings, opt)
	res.Recommendations = Recommend(res.Rating, res.Findings, opt)
	log.WithFields(logrus.Fields{
		"findings": len(res.Findings), "products": len(res.ProductInsights), "notes": len(res.Notes),
	}).Info("analysis complete")
	return res, nil
}

func overview(rows *table.RowSet) Overview {
	ov := Overview{Source: rows.Name, Rows: rows.Len(), Columns: rows.Columns()}
	cells := rows.Len() * len(ov.Columns)
	if cells > 0 {
		nulls := 0
		for _, c := range ov.Columns {
			nulls += rows.NullCount(c)
		}
		ov.Completeness = 1 - float64(nulls)/float64(cells)
	}
	if start, end, ok := TimeRange(rows); ok {
		ov.TimeStart, ov.TimeEnd = &start, &end
	}
	return ov
}
