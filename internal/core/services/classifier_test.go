package services

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

var testLoc = time.FixedZone("CST", 8*60*60)

func at(s string) time.Time {
	t, err := time.ParseInLocation(domain.NotifiedLayout, s, testLoc)
	if err != nil {
		panic(err)
	}
	return t
}

func documentPolicy() domain.ClassifyPolicy {
	return domain.ClassifyPolicy{
		Cutoff:    domain.DefaultCutoff,
		Retention: domain.DefaultDocumentRetention,
		Location:  testLoc,
	}
}

func textItems(contents ...string) []domain.Item {
	items := make([]domain.Item, len(contents))
	for i, c := range contents {
		items[i] = domain.Item{Position: i, ID: "blk" + string(rune('a'+i)), Kind: domain.ItemKindText, Content: c}
	}
	return items
}

func TestClassify_Scenario(t *testing.T) {
	region := textItems(
		"",
		"hello",
		"2024-01-01 10:00:00【已通知】old",
		"2024-01-02 09:00:00【已通知】recent",
	)

	c := Classify(region, at("2024-01-02 12:00:00"), documentPolicy())

	assert.Equal(t, []int{0}, c.Positions(domain.BucketBlankDelete))
	assert.Equal(t, []int{1}, c.Positions(domain.BucketToDeliver))
	assert.Equal(t, []int{2}, c.Positions(domain.BucketStaleDelete))
	assert.Equal(t, []int{3}, c.Positions(domain.BucketKeep))
	assert.Empty(t, c.Positions(domain.BucketToDeliverSecondPass))
}

func TestClassify_RetentionIsMeasuredInHours(t *testing.T) {
	// 27 hours old: past the 24 hour retention even though it is "yesterday".
	region := textItems("2024-01-02 09:00:00【已通知】recent")

	c := Classify(region, at("2024-01-03 12:00:00"), documentPolicy())

	assert.Equal(t, []int{0}, c.Positions(domain.BucketStaleDelete))
}

func TestClassify_BlankIsAlwaysBlank(t *testing.T) {
	for _, now := range []string{"2000-01-01 00:00:00", "2024-06-30 23:59:59", "2099-12-31 12:00:00"} {
		c := Classify(textItems("x", "", "y"), at(now), documentPolicy())
		assert.Equal(t, []int{1}, c.Positions(domain.BucketBlankDelete), now)
	}
}

func TestClassify_NoPrefixIsDeliver(t *testing.T) {
	region := textItems(
		"plain message",
		"【已通知】missing timestamp",
		"2024-13-45 99:00:00【已通知】bad timestamp",
		"2024-01-01 10:00:00 no marker",
	)

	c := Classify(region, at("2024-01-02 12:00:00"), documentPolicy())

	assert.Equal(t, []int{0, 1, 2, 3}, c.Positions(domain.BucketToDeliver))
}

func TestClassify_SecondPassWindow(t *testing.T) {
	now := at("2024-01-02 08:00:00")

	tests := []struct {
		name    string
		content string
		want    domain.Bucket
	}{
		{"at cutoff is excluded", "2024-01-01 19:00:00【已通知】a", domain.BucketKeep},
		{"just after cutoff", "2024-01-01 19:00:01【已通知】a", domain.BucketToDeliverSecondPass},
		{"end of day is included", "2024-01-01 23:59:59【已通知】a", domain.BucketToDeliverSecondPass},
		{"today is not second pass", "2024-01-02 00:00:00【已通知】a", domain.BucketKeep},
		{"before cutoff", "2024-01-01 18:59:59【已通知】a", domain.BucketKeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(textItems(tt.content), now, documentPolicy())
			require.Len(t, c.Assignments(), 1)
			assert.Equal(t, tt.want, c.Assignments()[0].Bucket)
		})
	}
}

func TestClassify_SecondPassWindowAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	policy := documentPolicy()
	policy.Location = ny
	// Clocks sprang forward on 2024-03-10, a 23 hour day.
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, ny)

	tests := []struct {
		name    string
		content string
		want    domain.Bucket
	}{
		{"after wall-clock cutoff", "2024-03-10 19:30:00【已通知】late", domain.BucketToDeliverSecondPass},
		{"at wall-clock cutoff", "2024-03-10 19:00:00【已通知】late", domain.BucketKeep},
		{"before wall-clock cutoff", "2024-03-10 18:30:00【已通知】late", domain.BucketKeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(textItems(tt.content), now, policy)
			require.Len(t, c.Assignments(), 1)
			assert.Equal(t, tt.want, c.Assignments()[0].Bucket)
		})
	}
}

func TestClassify_SecondPassWindowFallBack(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	policy := documentPolicy()
	policy.Location = ny
	// Clocks fell back on 2024-11-03, a 25 hour day.
	now := time.Date(2024, 11, 4, 8, 0, 0, 0, ny)

	c := Classify(textItems(
		"2024-11-03 18:30:00【已通知】early",
		"2024-11-03 19:00:01【已通知】late",
	), now, policy)

	assert.Equal(t, []int{1}, c.Positions(domain.BucketToDeliverSecondPass))
	assert.Equal(t, []int{0}, c.Positions(domain.BucketKeep))
}

func TestClassify_SecondPassTakesPrecedenceOverStale(t *testing.T) {
	policy := documentPolicy()
	policy.Retention = time.Hour

	c := Classify(textItems("2024-01-01 20:00:00【已通知】late"), at("2024-01-02 12:00:00"), policy)

	assert.Equal(t, []int{0}, c.Positions(domain.BucketToDeliverSecondPass))
}

func TestClassify_CustomCutoff(t *testing.T) {
	policy := documentPolicy()
	policy.Cutoff = 16 * time.Hour

	c := Classify(textItems("2024-01-01 17:00:00【已通知】a"), at("2024-01-02 08:00:00"), policy)

	assert.Equal(t, []int{0}, c.Positions(domain.BucketToDeliverSecondPass))
}

func TestClassify_UsesPolicyLocation(t *testing.T) {
	// 20:00 UTC on the 1st is already the 2nd in CST.
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	c := Classify(textItems("2024-01-01 20:00:00【已通知】a"), now, documentPolicy())

	assert.Equal(t, []int{0}, c.Positions(domain.BucketToDeliverSecondPass))
}

func TestClassify_ImagesAndOtherKinds(t *testing.T) {
	now := at("2024-01-03 12:00:00")
	region := []domain.Item{
		{Position: 0, ID: "h", Kind: domain.ItemKindHeading, Content: "sub"},
		{Position: 1, ID: "t1", Kind: domain.ItemKindText, Content: "2024-01-01 10:00:00【已通知】old"},
		{Position: 2, ID: "img", Kind: domain.ItemKindImage},
		{Position: 3, ID: "tbl", Kind: domain.ItemKindOther},
	}

	c := Classify(region, now, documentPolicy())

	assert.Equal(t, []int{0, 3}, c.Positions(domain.BucketKeep))
	assert.Equal(t, []int{1}, c.Positions(domain.BucketStaleDelete))
	assert.Equal(t, []int{2}, c.Positions(domain.BucketImageDeleteIfAllStale))

	plan := c.DeletionPlan()
	assert.Equal(t, 2, plan.Len())
	assert.Equal(t, []int{1, 1}, plan.AdjustedPositions())
}

func TestClassify_ImageKeptWhileAnyTextIsKept(t *testing.T) {
	now := at("2024-01-03 12:00:00")
	region := []domain.Item{
		{Position: 0, ID: "t1", Kind: domain.ItemKindText, Content: "2024-01-01 10:00:00【已通知】old"},
		{Position: 1, ID: "img", Kind: domain.ItemKindImage},
		{Position: 2, ID: "t2", Kind: domain.ItemKindText, Content: "2024-01-03 09:00:00【已通知】new"},
	}

	plan := Classify(region, now, documentPolicy()).DeletionPlan()

	require.Equal(t, 1, plan.Len())
	assert.Equal(t, "t1", plan.Entries()[0].ItemID)
}

func TestClassify_Deterministic(t *testing.T) {
	region := textItems("", "a", "2024-01-01 10:00:00【已通知】b")
	now := at("2024-01-03 12:00:00")

	first := Classify(region, now, documentPolicy())
	second := Classify(region, now, documentPolicy())

	assert.Equal(t, first.Assignments(), second.Assignments())
}

func TestLocateRegion(t *testing.T) {
	items := []domain.Item{
		{Position: 0, ID: "a", Kind: domain.ItemKindText, Content: "留言"},
		{Position: 1, ID: "b", Kind: domain.ItemKindHeading, Content: "留言"},
		{Position: 2, ID: "c", Kind: domain.ItemKindText, Content: "hi"},
		{Position: 3, ID: "d", Kind: domain.ItemKindText, Content: ""},
	}

	region, err := LocateRegion(items, "留言")
	require.NoError(t, err)
	require.Len(t, region, 2)
	assert.Equal(t, 2, region[0].Position)
	assert.Equal(t, 3, region[1].Position)
}

func TestLocateRegion_HeadingMissing(t *testing.T) {
	_, err := LocateRegion(textItems("留言"), "留言")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrHeadingNotFound))
	var hErr *domain.HeadingNotFoundError
	require.ErrorAs(t, err, &hErr)
	assert.Equal(t, "留言", hErr.Heading)
}

func TestLocateRegion_EmptyMarkerSelectsAll(t *testing.T) {
	items := textItems("a", "b")

	region, err := LocateRegion(items, "")

	require.NoError(t, err)
	assert.Equal(t, items, region)
}
