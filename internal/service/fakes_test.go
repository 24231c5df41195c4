package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
)

var errTestBoom = errors.New("boom")

// In-memory repository fakes shared by the service tests.

type fakePostRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*models.Post

	failSetLastRecycledAt bool
	setScheduledCalls     int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1, posts: make(map[int64]*models.Post)}
}

func (r *fakePostRepo) add(post *models.Post) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == 0 {
		post.ID = r.nextID
		r.nextID++
	} else if post.ID >= r.nextID {
		r.nextID = post.ID + 1
	}
	r.posts[post.ID] = post
	return post
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	copied := *post
	r.add(&copied)
	return copied.ID, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	return ok && post.UserID == userID, nil
}

func (r *fakePostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if p.Status == models.PostStatusScheduled && p.ScheduledAt.Valid && !p.ScheduledAt.Time.After(now) {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Time.Before(out[j].ScheduledAt.Time) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) ListRecyclable(ctx context.Context, cutoff time.Time, limit int) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if !p.IsEvergreen || p.Status != models.PostStatusPublished {
			continue
		}
		if !p.PublishedAt.Valid || p.PublishedAt.Time.After(cutoff) {
			continue
		}
		if p.LastRecycledAt.Valid && p.LastRecycledAt.Time.After(cutoff) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	// last_recycled_at ascending, nulls first
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LastRecycledAt.Valid != b.LastRecycledAt.Valid {
			return !a.LastRecycledAt.Valid
		}
		if !a.LastRecycledAt.Valid {
			return a.ID < b.ID
		}
		return a.LastRecycledAt.Time.Before(b.LastRecycledAt.Time)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) UpdateStatusIf(ctx context.Context, postID int64, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok || post.Status != from {
		return false, nil
	}
	post.Status = to
	return true, nil
}

func (r *fakePostRepo) SetEvergreen(ctx context.Context, postID int64, evergreen bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok || post.Status != models.PostStatusPublished {
		return false, nil
	}
	post.IsEvergreen = evergreen
	return true, nil
}

func (r *fakePostRepo) SetScheduledAt(ctx context.Context, postID int64, scheduledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setScheduledCalls++
	if post, ok := r.posts[postID]; ok {
		post.ScheduledAt = sql.NullTime{Time: scheduledAt, Valid: true}
	}
	return nil
}

func (r *fakePostRepo) SetPublished(ctx context.Context, postID int64, publishedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok || post.Status != models.PostStatusPublishing {
		return false, nil
	}
	post.Status = models.PostStatusPublished
	post.PublishedAt = sql.NullTime{Time: publishedAt, Valid: true}
	return true, nil
}

func (r *fakePostRepo) SetLastRecycledAt(ctx context.Context, postID int64, recycledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetLastRecycledAt {
		return errTestBoom
	}
	if post, ok := r.posts[postID]; ok {
		post.LastRecycledAt = sql.NullTime{Time: recycledAt, Valid: true}
	}
	return nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

type fakeTargetRepo struct {
	mu      sync.Mutex
	nextID  int64
	targets map[int64]*models.PostTarget

	listErrFor int64
}

func newFakeTargetRepo() *fakeTargetRepo {
	return &fakeTargetRepo{nextID: 1, targets: make(map[int64]*models.PostTarget)}
}

func (r *fakeTargetRepo) add(t *models.PostTarget) *models.PostTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == 0 {
		t.ID = r.nextID
		r.nextID++
	} else if t.ID >= r.nextID {
		r.nextID = t.ID + 1
	}
	r.targets[t.ID] = t
	return t
}

func (r *fakeTargetRepo) Create(ctx context.Context, tx *sql.Tx, target *models.PostTarget) (int64, error) {
	copied := *target
	r.add(&copied)
	return copied.ID, nil
}

func (r *fakeTargetRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostTarget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErrFor != 0 && r.listErrFor == postID {
		return nil, errTestBoom
	}
	var out []*models.PostTarget
	for _, t := range r.targets {
		if t.PostID == postID {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTargetRepo) MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.targets[id]
	if !ok || (t.Status != models.TargetStatusScheduled && t.Status != models.TargetStatusPublishing) {
		return false, nil
	}
	t.Status = models.TargetStatusPublished
	t.PlatformPostID = sql.NullString{String: platformPostID, Valid: true}
	t.PublishedAt = sql.NullTime{Time: publishedAt, Valid: true}
	t.FailureReason = ""
	return true, nil
}

func (r *fakeTargetRepo) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.targets[id]
	if !ok || (t.Status != models.TargetStatusScheduled && t.Status != models.TargetStatusPublishing) {
		return false, nil
	}
	t.Status = models.TargetStatusFailed
	t.FailureReason = reason
	return true, nil
}

func (r *fakeTargetRepo) get(id int64) *models.PostTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *r.targets[id]
	return &copied
}

type fakePostMediaRepo struct {
	mu    sync.Mutex
	links []*models.PostMedia
}

func (r *fakePostMediaRepo) Create(ctx context.Context, tx *sql.Tx, pm *models.PostMedia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *pm
	r.links = append(r.links, &copied)
	return nil
}

func (r *fakePostMediaRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PostMedia
	for _, pm := range r.links {
		if pm.PostID == postID {
			copied := *pm
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*models.SocialAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{nextID: 1, accounts: make(map[int64]*models.SocialAccount)}
}

func (r *fakeAccountRepo) add(sa *models.SocialAccount) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sa.ID == 0 {
		sa.ID = r.nextID
		r.nextID++
	} else if sa.ID >= r.nextID {
		r.nextID = sa.ID + 1
	}
	r.accounts[sa.ID] = sa
}

// Create mirrors the SQL upsert on (user_id, platform, platform_user_id).
func (r *fakeAccountRepo) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	r.mu.Lock()
	for _, existing := range r.accounts {
		if existing.UserID == sa.UserID && existing.Platform == sa.Platform && existing.PlatformUserID == sa.PlatformUserID {
			existing.AccessToken = sa.AccessToken
			existing.RefreshToken = sa.RefreshToken
			existing.TokenExpiresAt = sa.TokenExpiresAt
			existing.IsActive = true
			r.mu.Unlock()
			return existing.ID, nil
		}
	}
	r.mu.Unlock()

	copied := *sa
	r.add(&copied)
	return copied.ID, nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sa, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *sa
	return &copied, nil
}

func (r *fakeAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SocialAccount
	for _, sa := range r.accounts {
		if sa.UserID == userID && sa.IsActive {
			copied := *sa
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sa, ok := r.accounts[accountID]
	return ok && sa.UserID == userID && sa.IsActive, nil
}

func (r *fakeAccountRepo) Deactivate(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sa, ok := r.accounts[id]; ok {
		sa.IsActive = false
	}
	return nil
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	events []*models.AuditEvent
}

func (r *fakeAuditRepo) Create(ctx context.Context, event *models.AuditEvent) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return int64(len(r.events)), nil
}

type fakeShortLinkRepo struct {
	mu     sync.Mutex
	nextID int64
	links  map[string]*models.ShortLink
}

func newFakeShortLinkRepo() *fakeShortLinkRepo {
	return &fakeShortLinkRepo{nextID: 1, links: make(map[string]*models.ShortLink)}
}

func (r *fakeShortLinkRepo) Create(ctx context.Context, link *models.ShortLink) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *link
	copied.ID = r.nextID
	r.nextID++
	r.links[copied.ShortCode] = &copied
	return copied.ID, nil
}

func (r *fakeShortLinkRepo) GetByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[code]
	if !ok {
		return nil, nil
	}
	copied := *link
	return &copied, nil
}

func (r *fakeShortLinkRepo) IncrementClicks(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.links {
		if link.ID == id {
			link.Clicks++
		}
	}
	return nil
}

type fakeCredentialRepo struct {
	creds map[string]*models.PlatformCredential
	err   error
}

func credKey(userID int64, platform string) string {
	return fmt.Sprintf("%s/%d", platform, userID)
}

func (r *fakeCredentialRepo) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.PlatformCredential, error) {
	if r.err != nil {
		return nil, r.err
	}
	cred, ok := r.creds[credKey(userID, platform)]
	if !ok {
		return nil, nil
	}
	copied := *cred
	return &copied, nil
}

func (r *fakeCredentialRepo) Upsert(ctx context.Context, cred *models.PlatformCredential) error {
	if r.creds == nil {
		r.creds = make(map[string]*models.PlatformCredential)
	}
	copied := *cred
	r.creds[credKey(cred.UserID, cred.Platform)] = &copied
	return nil
}

type fakeViews struct {
	mu    sync.Mutex
	calls []int64
}

func (v *fakeViews) InvalidatePostViews(ctx context.Context, userID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, userID)
	return nil
}
