package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/core/ports/driving"
	"github.com/custodia-labs/noticesync/internal/logger"
)

// Ensure NoticeSyncService implements the interface.
var _ driving.NoticeSyncer = (*NoticeSyncService)(nil)

// NoticeSyncService moves pending remote items into the local notice and
// purges delivered items once they age out.
type NoticeSyncService struct {
	resources  []domain.Resource
	remotes    map[domain.ResourceKind]driven.RemoteCollection
	notices    driven.NoticeStore
	notice     domain.NoticeSettings
	deliveries driven.DeliveryStore
	now        func() time.Time
}

// NewNoticeSyncService creates the orchestrator for the given resources.
// The delivery store is optional.
func NewNoticeSyncService(
	resources []domain.Resource,
	remotes map[domain.ResourceKind]driven.RemoteCollection,
	notices driven.NoticeStore,
	notice domain.NoticeSettings,
	deliveries driven.DeliveryStore,
) *NoticeSyncService {
	return &NoticeSyncService{
		resources:  resources,
		remotes:    remotes,
		notices:    notices,
		notice:     notice,
		deliveries: deliveries,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *NoticeSyncService) WithClock(now func() time.Time) *NoticeSyncService {
	s.now = now
	return s
}

// SyncPending promotes unresolved comments, then delivers every pending
// item of the region to today's notice and marks it remotely.
func (s *NoticeSyncService) SyncPending(ctx context.Context, kind domain.ResourceKind) (*domain.SyncReport, error) {
	res, remote, err := s.lookup(kind)
	if err != nil {
		return nil, err
	}

	report := &domain.SyncReport{RunID: uuid.NewString(), Resource: kind}
	logger.Section(fmt.Sprintf("sync %s %s", kind, res.ID))

	if err := s.promoteComments(ctx, remote, res, report); err != nil {
		return report, err
	}

	items, err := remote.FetchAllItems(ctx, res.ID)
	if err != nil {
		return report, fmt.Errorf("fetch %s items: %w", kind, err)
	}
	region, err := LocateRegion(items, res.Heading)
	if err != nil {
		report.Skipped = err.Error()
		return report, err
	}

	now := s.now().In(location(res.Policy))
	pending := Classify(region, now, res.Policy).Deliveries()
	if len(pending) == 0 {
		logger.Info("no pending %s items", kind)
		return report, nil
	}

	doc, err := s.notices.Open(ctx, now)
	if err != nil {
		report.Skipped = err.Error()
		return report, fmt.Errorf("open notice: %w", err)
	}
	if !doc.HasAnchor(s.notice.Heading) {
		err := fmt.Errorf("%w: %q in %s", domain.ErrAnchorNotFound, s.notice.Heading, doc.Path())
		report.Skipped = err.Error()
		return report, err
	}

	if err := s.deliver(ctx, remote, res, doc, pending, now, report); err != nil {
		return report, err
	}

	logger.Info("%s: delivered %d, marked %d, failed %d", kind, report.Delivered, report.Marked, report.Failed)
	return report, nil
}

// PurgeStale deletes blank and stale items of the region, plus images once
// every text item is stale.
func (s *NoticeSyncService) PurgeStale(ctx context.Context, kind domain.ResourceKind) (*domain.PurgeReport, error) {
	res, remote, err := s.lookup(kind)
	if err != nil {
		return nil, err
	}

	report := &domain.PurgeReport{RunID: uuid.NewString(), Resource: kind}
	logger.Section(fmt.Sprintf("purge %s %s", kind, res.ID))

	items, err := remote.FetchAllItems(ctx, res.ID)
	if err != nil {
		return report, fmt.Errorf("fetch %s items: %w", kind, err)
	}
	region, err := LocateRegion(items, res.Heading)
	if err != nil {
		return report, err
	}

	plan := Classify(region, s.now(), res.Policy).DeletionPlan()
	report.Planned = plan.Len()
	if plan.Len() == 0 {
		logger.Info("nothing to purge in %s", kind)
		return report, nil
	}

	report.Deleted, report.Failed, err = ApplyDeletionPlan(ctx, remote, res.ID, plan)
	logger.Info("%s: deleted %d of %d, failed %d", kind, report.Deleted, report.Planned, report.Failed)
	return report, err
}

// SyncAll runs SyncPending for every enabled resource in order.
// Skipped resources are logged and do not fail the run; an auth failure
// aborts it.
func (s *NoticeSyncService) SyncAll(ctx context.Context) ([]domain.SyncReport, error) {
	var reports []domain.SyncReport
	var errs []error
	for _, res := range s.resources {
		report, err := s.SyncPending(ctx, res.Kind)
		if report != nil {
			reports = append(reports, *report)
		}
		if err := s.settle(ctx, res.Kind, err); err != nil {
			if errors.Is(err, domain.ErrAuth) || ctx.Err() != nil {
				return reports, err
			}
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

// PurgeAll runs PurgeStale for every enabled resource in order.
func (s *NoticeSyncService) PurgeAll(ctx context.Context) ([]domain.PurgeReport, error) {
	var reports []domain.PurgeReport
	var errs []error
	for _, res := range s.resources {
		report, err := s.PurgeStale(ctx, res.Kind)
		if report != nil {
			reports = append(reports, *report)
		}
		if err := s.settle(ctx, res.Kind, err); err != nil {
			if errors.Is(err, domain.ErrAuth) || ctx.Err() != nil {
				return reports, err
			}
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

// settle drops skip errors after logging them.
func (s *NoticeSyncService) settle(ctx context.Context, kind domain.ResourceKind, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsSkip(err) && ctx.Err() == nil {
		logger.Warn("skipping %s: %v", kind, err)
		return nil
	}
	return fmt.Errorf("%s: %w", kind, err)
}

func (s *NoticeSyncService) lookup(kind domain.ResourceKind) (domain.Resource, driven.RemoteCollection, error) {
	for _, res := range s.resources {
		if res.Kind != kind {
			continue
		}
		remote, ok := s.remotes[kind]
		if !ok || remote == nil {
			return domain.Resource{}, nil, fmt.Errorf("no remote configured for %s", kind)
		}
		return res, remote, nil
	}
	return domain.Resource{}, nil, fmt.Errorf("%w: %s", domain.ErrResourceDisabled, kind)
}

// promoteComments appends every unresolved comment as a new item and
// resolves it. Failures are counted and skipped. Comments without text stay
// unresolved so whatever they hold remains visible to a person.
func (s *NoticeSyncService) promoteComments(
	ctx context.Context,
	remote driven.RemoteCollection,
	res domain.Resource,
	report *domain.SyncReport,
) error {
	comments, err := remote.FetchUnresolvedComments(ctx, res.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			return err
		}
		logger.Error("fetch comments for %s: %v", res.ID, err)
		return nil
	}

	for _, c := range comments {
		if c.Solved {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.TrimSpace(c.Text) == "" {
			logger.Warn("comment %s has no text, leaving it unresolved", c.ID)
			continue
		}

		if _, err := remote.AppendItem(ctx, res.ID, c.Text); err != nil {
			if errors.Is(err, domain.ErrAuth) {
				return err
			}
			report.PromoteFailed++
			logger.Error("%v", &domain.RemoteMutationError{Op: "append", Target: "comment " + c.ID, Err: err})
			continue
		}
		if err := remote.ResolveComment(ctx, res.ID, c.ID); err != nil {
			if errors.Is(err, domain.ErrAuth) {
				return err
			}
			report.PromoteFailed++
			logger.Error("%v", &domain.RemoteMutationError{Op: "resolve", Target: "comment " + c.ID, Err: err})
			continue
		}

		report.Promoted++
		logger.Info("promoted comment %s", c.ID)
	}
	return nil
}

// deliver writes each pending item after the notice anchor, saves the
// notice, then marks the item remotely. Inserted entries keep region order.
func (s *NoticeSyncService) deliver(
	ctx context.Context,
	remote driven.RemoteCollection,
	res domain.Resource,
	doc driven.NoticeDocument,
	pending []domain.Assignment,
	now time.Time,
	report *domain.SyncReport,
) error {
	for i, a := range pending {
		if err := ctx.Err(); err != nil {
			report.Failed += len(pending) - i
			return err
		}

		text := s.noticeText(a)
		if err := doc.InsertAfterAnchor(s.notice.Heading, text); err != nil {
			report.Failed++
			logger.Error("insert item %s into %s: %v", a.Item.ID, doc.Path(), err)
			continue
		}
		if err := doc.Save(); err != nil {
			// Nothing after this point reaches disk.
			report.Failed += len(pending) - i
			logger.Error("save %s: %v", doc.Path(), err)
			return nil
		}
		report.Delivered++
		s.recordDelivery(ctx, domain.Delivery{
			RunID:       report.RunID,
			Resource:    res.Kind,
			ItemID:      a.Item.ID,
			Text:        text,
			NoticePath:  doc.Path(),
			DeliveredAt: now,
		})

		marked := domain.FormatNotified(now, a.State.Body)
		if err := remote.UpdateItemContent(ctx, res.ID, a.Item.ID, marked); err != nil {
			if errors.Is(err, domain.ErrAuth) {
				return err
			}
			report.Failed++
			logger.Error("%v", &domain.RemoteMutationError{Op: "update", Target: "item " + a.Item.ID, Err: err})
			continue
		}
		report.Marked++
		s.markDelivered(ctx, report.RunID, a.Item.ID)

		if a.Bucket == domain.BucketToDeliverSecondPass {
			logger.Info("re-delivered item %s", a.Item.ID)
		} else {
			logger.Info("delivered item %s", a.Item.ID)
		}
	}
	return nil
}

// noticeText is the paragraph written for an item. Second-pass items keep
// their earlier delivered prefix when configured.
func (s *NoticeSyncService) noticeText(a domain.Assignment) string {
	if a.Bucket == domain.BucketToDeliverSecondPass && s.notice.SecondPassPrefix {
		return a.Item.Content
	}
	return a.State.Body
}

func (s *NoticeSyncService) recordDelivery(ctx context.Context, d domain.Delivery) {
	if s.deliveries == nil {
		return
	}
	if err := s.deliveries.RecordDelivery(ctx, d); err != nil {
		logger.Warn("record delivery of %s: %v", d.ItemID, err)
	}
}

func (s *NoticeSyncService) markDelivered(ctx context.Context, runID, itemID string) {
	if s.deliveries == nil {
		return
	}
	if err := s.deliveries.MarkDelivered(ctx, runID, itemID); err != nil {
		logger.Warn("mark delivery of %s: %v", itemID, err)
	}
}

func location(p domain.ClassifyPolicy) *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}
