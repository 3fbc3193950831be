package service

import (
	"context"
	"sync"
	"time"

	"SafeHer/config"
	"SafeHer/internal/model"
	"SafeHer/internal/model/dto"
	"SafeHer/internal/repository"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/storage/database"
	"SafeHer/utils"
)

// 联系人存在 users.trusted_contacts JSONB 中，手机号密文 + 哈希双写

type ContactService struct {
	users *repository.UserRepo
}

var (
	contactService *ContactService
	contactOnce    sync.Once
)

func Contact() *ContactService {
	contactOnce.Do(func() {
		contactService = &ContactService{
			users: repository.NewUserRepo(database.DB()),
		}
	})
	return contactService
}

// ListContacts 联系人列表，按优先级排序
func (s *ContactService) ListContacts(ctx context.Context, userID int64) ([]*dto.ContactItem, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ContactItem, 0, len(user.TrustedContacts))
	for _, c := range sortedContacts(user.TrustedContacts) {
		items = append(items, contactToItem(c))
	}
	return items, nil
}

// AddContact 新增联系人，优先级唯一且数量封顶
func (s *ContactService) AddContact(ctx context.Context, userID int64, req dto.CreateContactRequest) (*dto.ContactItem, error) {
	if !utils.ValidatePhone(req.Phone) {
		return nil, pkgerrors.InvalidPhone
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(user.TrustedContacts) >= config.Cfg.ContactMaxCount {
		return nil, pkgerrors.ContactLimitReached
	}
	for _, c := range user.TrustedContacts {
		if c.Priority == req.Priority {
			return nil, pkgerrors.ContactPriorityConflict
		}
	}

	cipher, err := utils.EncryptPhone(req.Phone)
	if err != nil {
		return nil, err
	}

	contact := model.TrustedContact{
		DisplayName:       req.DisplayName,
		Relationship:      req.Relationship,
		PhoneCipherBase64: cipher,
		PhoneHash:         utils.HashPhone(req.Phone),
		Priority:          req.Priority,
		CreatedAt:         time.Now().Format(time.RFC3339),
	}

	contacts := append(user.TrustedContacts, contact)
	if err := s.users.UpdateContacts(ctx, userID, contacts); err != nil {
		return nil, err
	}

	item := contactToItem(contact)
	item.PhoneMasked = utils.MaskPhone(req.Phone)
	return item, nil
}

// UpdateContact 按优先级定位更新联系人
func (s *ContactService) UpdateContact(ctx context.Context, userID int64, priority int, req dto.UpdateContactRequest) (*dto.ContactItem, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, c := range user.TrustedContacts {
		if c.Priority == priority {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.ContactNotFound
	}

	contact := user.TrustedContacts[idx]
	if req.DisplayName != "" {
		contact.DisplayName = req.DisplayName
	}
	if req.Relationship != "" {
		contact.Relationship = req.Relationship
	}
	if req.Phone != "" {
		if !utils.ValidatePhone(req.Phone) {
			return nil, pkgerrors.InvalidPhone
		}
		cipher, err := utils.EncryptPhone(req.Phone)
		if err != nil {
			return nil, err
		}
		contact.PhoneCipherBase64 = cipher
		contact.PhoneHash = utils.HashPhone(req.Phone)
	}

	user.TrustedContacts[idx] = contact
	if err := s.users.UpdateContacts(ctx, userID, user.TrustedContacts); err != nil {
		return nil, err
	}

	return contactToItem(contact), nil
}

// DeleteContact 按优先级删除联系人
func (s *ContactService) DeleteContact(ctx context.Context, userID int64, priority int) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	kept := make(model.TrustedContacts, 0, len(user.TrustedContacts))
	found := false
	for _, c := range user.TrustedContacts {
		if c.Priority == priority {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return pkgerrors.ContactNotFound
	}

	return s.users.UpdateContacts(ctx, userID, kept)
}

func (s *ContactService) loadUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.UserNotFound
	}
	return user, nil
}

func sortedContacts(contacts model.TrustedContacts) model.TrustedContacts {
	sorted := make(model.TrustedContacts, len(contacts))
	copy(sorted, contacts)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Priority < sorted[j-1].Priority; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

func contactToItem(c model.TrustedContact) *dto.ContactItem {
	item := &dto.ContactItem{
		DisplayName:  c.DisplayName,
		Relationship: c.Relationship,
		Priority:     c.Priority,
	}
	if t, err := time.Parse(time.RFC3339, c.CreatedAt); err == nil {
		item.CreatedAt = t
	}
	if phone, err := utils.DecryptPhoneBase64(c.PhoneCipherBase64); err == nil {
		item.PhoneMasked = utils.MaskPhone(phone)
	} else {
		item.PhoneMasked = "****"
	}
	return item
}
