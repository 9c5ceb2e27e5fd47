// internal/adapters/out/firestore/checkout_session_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "marketcart/internal/domain/cart"
	chkdom "marketcart/internal/domain/checkout"
)

// CheckoutSessionRepositoryFS implements checkout.Repository using
// Firestore.
//
// Collection design:
// - collection: checkout_sessions
// - docId: session id (source of truth)
// - fields: shipping(map), quickRegister(map), directItemKey,
//   createdAt, updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt".
type CheckoutSessionRepositoryFS struct {
	Client *firestore.Client
}

func NewCheckoutSessionRepositoryFS(client *firestore.Client) *CheckoutSessionRepositoryFS {
	return &CheckoutSessionRepositoryFS{Client: client}
}

func (r *CheckoutSessionRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("checkout_sessions")
}

// sessionDoc is the stored shape. Kept separate from the domain type so
// schema drift stays an adapter problem.
type sessionDoc struct {
	ID            string                     `firestore:"id"`
	Shipping      *chkdom.ShippingState      `firestore:"shipping"`
	QuickRegister *chkdom.QuickRegisterState `firestore:"quickRegister"`
	DirectItemKey string                     `firestore:"directItemKey"`
	DirectItem    *cartdom.Item              `firestore:"directItem"`
	CreatedAt     time.Time                  `firestore:"createdAt"`
	UpdatedAt     time.Time                  `firestore:"updatedAt"`
	ExpiresAt     time.Time                  `firestore:"expiresAt"`
}

func sessionDocFromDomain(s *chkdom.Session) sessionDoc {
	return sessionDoc{
		ID:            s.ID,
		Shipping:      s.Shipping,
		QuickRegister: s.QuickRegister,
		DirectItemKey: s.DirectItemKey,
		DirectItem:    s.DirectItem,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		ExpiresAt:     s.ExpiresAt,
	}
}

func (d sessionDoc) toDomain() *chkdom.Session {
	sess := &chkdom.Session{
		ID:            d.ID,
		Shipping:      d.Shipping,
		QuickRegister: d.QuickRegister,
		DirectItemKey: d.DirectItemKey,
		DirectItem:    d.DirectItem,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		ExpiresAt:     d.ExpiresAt,
	}
	// Old docs may predate either sub-state; never hand out nils.
	if sess.Shipping == nil {
		sess.Shipping = chkdom.NewShippingState()
	}
	if sess.QuickRegister == nil {
		sess.QuickRegister = &chkdom.QuickRegisterState{}
	}
	return sess
}

// GetByID returns (nil, nil) if not found (nil policy).
func (r *CheckoutSessionRepositoryFS) GetByID(ctx context.Context, id string) (*chkdom.Session, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("checkout_session_repository_fs: firestore client is nil")
	}

	sid := strings.TrimSpace(id)
	if sid == "" {
		return nil, errors.New("checkout_session_repository_fs: id is empty")
	}

	snap, err := r.col().Doc(sid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	sess := doc.toDomain()
	// docId is the source of truth even when the id field is absent.
	sess.ID = sid
	return sess, nil
}

// Upsert saves the session by docId=session.ID.
func (r *CheckoutSessionRepositoryFS) Upsert(ctx context.Context, s *chkdom.Session) error {
	if r == nil || r.Client == nil {
		return errors.New("checkout_session_repository_fs: firestore client is nil")
	}
	if s == nil {
		return errors.New("checkout_session_repository_fs: session is nil")
	}

	sid := strings.TrimSpace(s.ID)
	if sid == "" {
		return errors.New("checkout_session_repository_fs: Upsert requires session.ID as docId")
	}

	// Overwrite full doc (simple & predictable).
	_, err := r.col().Doc(sid).Set(ctx, sessionDocFromDomain(s))
	return err
}

// DeleteByID removes the session doc. Deleting an absent doc is not an
// error.
func (r *CheckoutSessionRepositoryFS) DeleteByID(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("checkout_session_repository_fs: firestore client is nil")
	}

	sid := strings.TrimSpace(id)
	if sid == "" {
		return errors.New("checkout_session_repository_fs: id is empty")
	}

	_, err := r.col().Doc(sid).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return nil
}
