package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kikoba-backend/internal/docstore"
	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/repository"
)

type memberRepository struct {
	db docstore.Store
}

func NewMemberRepository(db docstore.Store) repository.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) (string, error) {
	if member.JoinedOn.IsZero() {
		member.JoinedOn = time.Now().UTC()
	}
	id, err := r.db.Put(ctx, collMembers, member.ID, docstore.Fields{
		"name":      member.Name,
		"member_no": member.MemberNo,
		"phone":     member.Phone,
		"role":      string(member.Role),
		"active":    member.Active,
		"joined_on": member.JoinedOn.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("create member: %w", err)
	}
	member.ID = id
	return id, nil
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	fields, err := r.db.Get(ctx, collMembers, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m := memberFromFields(fields)
	return &m, nil
}

func (r *memberRepository) GetByMemberNo(ctx context.Context, memberNo string) (*domain.Member, error) {
	docs, err := r.db.Query(ctx, collMembers, docstore.Filter{"member_no": memberNo})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	m := memberFromFields(docs[0])
	return &m, nil
}

func (r *memberRepository) ListActive(ctx context.Context) ([]domain.Member, error) {
	return r.query(ctx, docstore.Filter{"active": true})
}

func (r *memberRepository) ListActiveAdmins(ctx context.Context) ([]domain.Member, error) {
	return r.query(ctx, docstore.Filter{"active": true, "role": string(domain.RoleAdmin)})
}

func (r *memberRepository) query(ctx context.Context, filter docstore.Filter) ([]domain.Member, error) {
	docs, err := r.db.Query(ctx, collMembers, filter)
	if err != nil {
		return nil, err
	}
	members := make([]domain.Member, 0, len(docs))
	for _, fields := range docs {
		members = append(members, memberFromFields(fields))
	}
	return members, nil
}

func memberFromFields(f docstore.Fields) domain.Member {
	return domain.Member{
		ID:       getString(f, "id"),
		Name:     getString(f, "name"),
		MemberNo: getString(f, "member_no"),
		Phone:    getString(f, "phone"),
		Role:     domain.Role(getString(f, "role")),
		Active:   getBool(f, "active"),
		JoinedOn: getTime(f, "joined_on"),
	}
}
