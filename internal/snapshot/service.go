package snapshot

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/trendloop/trendops/internal/awscli"
)

const (
	nameTagKeyConstant                  = "Name"
	cleanupTagKeyConstant               = "AutoCleanup"
	cleanupTagValueConstant             = "true"
	descriptionTemplatePrefixConstant   = "Automated backup "
	descriptionDateLayoutConstant       = "2006-01-02"
	missingSnapshotIDSentinelConstant   = "None"
	loggerRequiredMessageConstant       = "logger not configured"
	clientRequiredMessageConstant       = "snapshot client not configured"
	volumeRequiredMessageConstant       = "volume or instance identifier required"
	volumeResolutionWarningConstant     = "Unable to resolve root volume"
	creationWarningMessageConstant      = "Unable to create snapshot"
	creationLogMessageConstant          = "Snapshot created"
	listingWarningMessageConstant       = "Unable to list managed snapshots"
	deletionWarningMessageConstant      = "Unable to delete expired snapshot"
	deletionLogMessageConstant          = "Expired snapshot deleted"
	skippedIdentifierLogMessageConstant = "Skipping snapshot with unusable identifier"
	dryRunCreationLogMessageConstant    = "Dry run: snapshot creation skipped"
	dryRunDeletionLogMessageConstant    = "Dry run: snapshot deletion skipped"
	rotationCompleteLogMessageConstant  = "Snapshot rotation complete"
	volumeFieldNameConstant             = "volume_id"
	instanceFieldNameConstant           = "instance_id"
	snapshotFieldNameConstant           = "snapshot_id"
	retainFieldNameConstant             = "retain"
	managedCountFieldNameConstant       = "managed_count"
	deletedCountFieldNameConstant       = "deleted_count"
	descriptionFieldNameConstant        = "description"
)

// ErrLoggerNotConfigured indicates the service requires a logger.
var ErrLoggerNotConfigured = errors.New(loggerRequiredMessageConstant)

// ErrClientNotConfigured indicates the service requires a snapshot client.
var ErrClientNotConfigured = errors.New(clientRequiredMessageConstant)

// ErrVolumeNotConfigured indicates neither a volume nor an instance was supplied.
var ErrVolumeNotConfigured = errors.New(volumeRequiredMessageConstant)

// SnapshotClient is the subset of awscli.Client used by rotation.
type SnapshotClient interface {
	CreateSnapshot(executionContext context.Context, volumeID string, description string, tags []awscli.Tag) (string, error)
	DescribeSnapshots(executionContext context.Context, filter awscli.TagFilter) ([]awscli.Snapshot, error)
	DeleteSnapshot(executionContext context.Context, snapshotID string) error
	ResolveRootVolume(executionContext context.Context, instanceID string) (string, error)
}

// Clock supplies the current time for snapshot descriptions.
type Clock func() time.Time

// RotationOptions describes one create-and-rotate run.
type RotationOptions struct {
	VolumeID     string
	InstanceID   string
	SnapshotName string
	RetainCount  int
	DryRun       bool
}

// Service creates snapshots and rotates expired ones.
type Service struct {
	logger *zap.Logger
	client SnapshotClient
	clock  Clock
}

// NewService constructs a rotation service using the wall clock.
func NewService(logger *zap.Logger, client SnapshotClient) (*Service, error) {
	return NewServiceWithClock(logger, client, time.Now)
}

// NewServiceWithClock constructs a rotation service with an explicit clock.
func NewServiceWithClock(logger *zap.Logger, client SnapshotClient, clock Clock) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if clock == nil {
		clock = time.Now
	}

	return &Service{logger: logger, client: client, clock: clock}, nil
}

// Rotate creates one snapshot and deletes managed snapshots beyond the
// retention count, oldest first.
//
// Creation and deletion failures are logged and absorbed; the completion log
// entry is emitted on every run.
func (service *Service) Rotate(executionContext context.Context, options RotationOptions) error {
	volumeID, volumeError := service.resolveVolume(executionContext, options)
	if volumeError != nil {
		return volumeError
	}

	service.createSnapshot(executionContext, volumeID, options)
	deletedCount, managedCount := service.rotateExpired(executionContext, options)

	service.logger.Info(rotationCompleteLogMessageConstant,
		zap.String(volumeFieldNameConstant, volumeID),
		zap.Int(retainFieldNameConstant, options.RetainCount),
		zap.Int(managedCountFieldNameConstant, managedCount),
		zap.Int(deletedCountFieldNameConstant, deletedCount),
	)

	return nil
}

func (service *Service) resolveVolume(executionContext context.Context, options RotationOptions) (string, error) {
	if len(options.VolumeID) > 0 {
		return options.VolumeID, nil
	}
	if len(options.InstanceID) == 0 {
		return "", ErrVolumeNotConfigured
	}

	resolvedVolumeID, resolutionError := service.client.ResolveRootVolume(executionContext, options.InstanceID)
	if resolutionError != nil {
		service.logger.Warn(volumeResolutionWarningConstant,
			zap.String(instanceFieldNameConstant, options.InstanceID),
			zap.Error(resolutionError),
		)
		return "", resolutionError
	}

	return resolvedVolumeID, nil
}

func (service *Service) createSnapshot(executionContext context.Context, volumeID string, options RotationOptions) {
	snapshotDescription := descriptionTemplatePrefixConstant + service.clock().Format(descriptionDateLayoutConstant)
	snapshotTags := []awscli.Tag{
		{Key: nameTagKeyConstant, Value: options.SnapshotName},
		{Key: cleanupTagKeyConstant, Value: cleanupTagValueConstant},
	}

	if options.DryRun {
		service.logger.Info(dryRunCreationLogMessageConstant,
			zap.String(volumeFieldNameConstant, volumeID),
			zap.String(descriptionFieldNameConstant, snapshotDescription),
		)
		return
	}

	createdSnapshotID, creationError := service.client.CreateSnapshot(executionContext, volumeID, snapshotDescription, snapshotTags)
	if creationError != nil {
		service.logger.Warn(creationWarningMessageConstant,
			zap.String(volumeFieldNameConstant, volumeID),
			zap.Error(creationError),
		)
		return
	}

	service.logger.Info(creationLogMessageConstant,
		zap.String(volumeFieldNameConstant, volumeID),
		zap.String(snapshotFieldNameConstant, createdSnapshotID),
		zap.String(descriptionFieldNameConstant, snapshotDescription),
	)
}

func (service *Service) rotateExpired(executionContext context.Context, options RotationOptions) (int, int) {
	managedSnapshots, listingError := service.client.DescribeSnapshots(executionContext, awscli.TagFilter{
		Key:   cleanupTagKeyConstant,
		Value: cleanupTagValueConstant,
	})
	if listingError != nil {
		service.logger.Warn(listingWarningMessageConstant, zap.Error(listingError))
		return 0, 0
	}

	sort.Slice(managedSnapshots, func(firstIndex, secondIndex int) bool {
		return managedSnapshots[firstIndex].StartTime.Before(managedSnapshots[secondIndex].StartTime)
	})

	if len(managedSnapshots) <= options.RetainCount {
		return 0, len(managedSnapshots)
	}

	deletedCount := 0
	for _, expiredSnapshot := range managedSnapshots[:len(managedSnapshots)-options.RetainCount] {
		if len(expiredSnapshot.SnapshotID) == 0 || expiredSnapshot.SnapshotID == missingSnapshotIDSentinelConstant {
			service.logger.Debug(skippedIdentifierLogMessageConstant, zap.String(snapshotFieldNameConstant, expiredSnapshot.SnapshotID))
			continue
		}

		if options.DryRun {
			service.logger.Info(dryRunDeletionLogMessageConstant, zap.String(snapshotFieldNameConstant, expiredSnapshot.SnapshotID))
			continue
		}

		deletionError := service.client.DeleteSnapshot(executionContext, expiredSnapshot.SnapshotID)
		if deletionError != nil {
			service.logger.Warn(deletionWarningMessageConstant,
				zap.String(snapshotFieldNameConstant, expiredSnapshot.SnapshotID),
				zap.Error(deletionError),
			)
			continue
		}

		deletedCount++
		service.logger.Info(deletionLogMessageConstant, zap.String(snapshotFieldNameConstant, expiredSnapshot.SnapshotID))
	}

	return deletedCount, len(managedSnapshots)
}
