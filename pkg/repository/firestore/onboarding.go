package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/janus/pkg/domain/interfaces"
	"github.com/secmon-lab/janus/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	onboardingCollection = "onboarding"
	onboardingUsers      = "users"
)

type onboardingRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.OnboardingRepository = &onboardingRepository{}

func newOnboardingRepository(client *firestore.Client) *onboardingRepository {
	return &onboardingRepository{
		client: client,
	}
}

// onboardingDoc is the Firestore persistence model
type onboardingDoc struct {
	ChannelID        string    `firestore:"channel_id"`
	UserID           string    `firestore:"user_id"`
	MessageTS        string    `firestore:"message_ts"`
	ReactionTaskDone bool      `firestore:"reaction_task_done"`
	PinTaskDone      bool      `firestore:"pin_task_done"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

func toOnboardingDoc(rec *model.OnboardingRecord) *onboardingDoc {
	return &onboardingDoc{
		ChannelID:        rec.ChannelID,
		UserID:           rec.UserID,
		MessageTS:        rec.MessageTS,
		ReactionTaskDone: rec.ReactionTaskDone,
		PinTaskDone:      rec.PinTaskDone,
		UpdatedAt:        rec.UpdatedAt,
	}
}

func fromOnboardingDoc(d *onboardingDoc) *model.OnboardingRecord {
	return &model.OnboardingRecord{
		ChannelID:        d.ChannelID,
		UserID:           d.UserID,
		MessageTS:        d.MessageTS,
		ReactionTaskDone: d.ReactionTaskDone,
		PinTaskDone:      d.PinTaskDone,
		UpdatedAt:        d.UpdatedAt,
	}
}

// userDoc returns the document path: onboarding/{channelID}/users/{userID}
func (r *onboardingRepository) userDoc(channelID, userID string) *firestore.DocumentRef {
	name := onboardingCollection
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_" + onboardingCollection
	}
	return r.client.Collection(name).Doc(channelID).Collection(onboardingUsers).Doc(userID)
}

func (r *onboardingRepository) Put(ctx context.Context, record *model.OnboardingRecord) error {
	if err := record.Validate(); err != nil {
		return goerr.Wrap(err, "failed to put onboarding record")
	}

	if _, err := r.userDoc(record.ChannelID, record.UserID).Set(ctx, toOnboardingDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to save onboarding record",
			goerr.V(model.ChannelIDKey, record.ChannelID),
			goerr.V(model.UserIDKey, record.UserID),
		)
	}

	return nil
}

func (r *onboardingRepository) Get(ctx context.Context, channelID, userID string) (*model.OnboardingRecord, error) {
	doc, err := r.userDoc(channelID, userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "onboarding record not found",
				goerr.V(model.ChannelIDKey, channelID),
				goerr.V(model.UserIDKey, userID),
			)
		}
		return nil, goerr.Wrap(err, "failed to get onboarding record",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V(model.UserIDKey, userID),
		)
	}

	var d onboardingDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal onboarding record",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V(model.UserIDKey, userID),
		)
	}

	return fromOnboardingDoc(&d), nil
}
