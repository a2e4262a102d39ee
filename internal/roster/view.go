package roster

import (
	"sort"
	"strings"

	"github.com/nhle/kitchen-roster/internal/model"
)

// OtherBucket names the bucket of tasks that match no category.
const OtherBucket = "other"

// Counts are computed over the tasks in view.
type Counts struct {
	Total     int
	Completed int
	Pending   int
}

// Bucket groups the in-view tasks of one category.
type Bucket struct {
	Name  string
	Tasks []model.TaskRecord
}

// View is the ordered, display-ready roster.
type View struct {
	Tasks   []model.TaskRecord
	Counts  Counts
	Buckets []Bucket
}

// Less orders incomplete before complete, then by due time with untimed
// tasks last, then by case-insensitive title. The id breaks remaining
// ties so the order is total.
func Less(a, b model.TaskRecord) bool {
	if ad, bd := model.IsDone(a), model.IsDone(b); ad != bd {
		return !ad
	}
	switch {
	case a.DueAt != nil && b.DueAt == nil:
		return true
	case a.DueAt == nil && b.DueAt != nil:
		return false
	case a.DueAt != nil && b.DueAt != nil && *a.DueAt != *b.DueAt:
		return *a.DueAt < *b.DueAt
	}
	at := strings.ToLower(a.DisplayTitle())
	bt := strings.ToLower(b.DisplayTitle())
	if at != bt {
		return at < bt
	}
	return a.ID < b.ID
}

// Sort orders recs in place with Less.
func Sort(recs []model.TaskRecord) {
	sort.SliceStable(recs, func(i, j int) bool { return Less(recs[i], recs[j]) })
}

// Build filters, sorts, counts, and buckets recs. recs is not modified.
func Build(
	recs []model.TaskRecord,
	viewer model.Viewer,
	filter Filter,
	categories []model.CategoryConfig,
) View {
	tasks := make([]model.TaskRecord, 0, len(recs))
	for _, rec := range recs {
		if filter.Match(rec, viewer, categories) {
			tasks = append(tasks, rec)
		}
	}
	Sort(tasks)

	v := View{Tasks: tasks}
	for _, t := range tasks {
		v.Counts.Total++
		if model.IsDone(t) {
			v.Counts.Completed++
		} else {
			v.Counts.Pending++
		}
	}

	v.Buckets = make([]Bucket, 0, len(categories)+1)
	matched := make(map[string]bool, len(tasks))
	for _, cat := range categories {
		b := Bucket{Name: cat.Name}
		for _, t := range tasks {
			if InCategory(t, cat) {
				b.Tasks = append(b.Tasks, t)
				matched[t.ID] = true
			}
		}
		v.Buckets = append(v.Buckets, b)
	}
	other := Bucket{Name: OtherBucket}
	for _, t := range tasks {
		if !matched[t.ID] {
			other.Tasks = append(other.Tasks, t)
		}
	}
	v.Buckets = append(v.Buckets, other)

	return v
}
