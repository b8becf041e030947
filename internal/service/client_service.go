package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"rentalportal/internal/model"
	"rentalportal/internal/repository"
	"rentalportal/internal/status"

	"github.com/google/uuid"
)

// --- Address DTO ---

type AddressPayload struct {
	AddressType string `json:"address_type"`
	FullAddress string `json:"full_address"`
	Country     string `json:"country"`
	City        string `json:"city"`
	IsDefault   bool   `json:"is_default"`
}

type AddressResponse struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	AddressType string    `json:"address_type"`
	FullAddress string    `json:"full_address"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Client DTOs ---

type CreateClientRequest struct {
	Name          string           `json:"name" binding:"required"`
	CompanyName   string           `json:"company_name"`
	TaxCode       string           `json:"tax_code"`
	ContactPerson string           `json:"contact_person"`
	Phone         string           `json:"phone"`
	Email         string           `json:"email"`
	Addresses     []AddressPayload `json:"addresses"`
}

type UpdateClientRequest struct {
	Name          *string           `json:"name"`
	CompanyName   *string           `json:"company_name"`
	TaxCode       *string           `json:"tax_code"`
	ContactPerson *string           `json:"contact_person"`
	Phone         *string           `json:"phone"`
	Email         *string           `json:"email"`
	IsActive      *bool             `json:"is_active"`
	Addresses     *[]AddressPayload `json:"addresses"` // pointer so nil = not sent, [] = clear all
}

type ClientResponse struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	CompanyName   string            `json:"company_name"`
	TaxCode       string            `json:"tax_code"`
	ContactPerson string            `json:"contact_person"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email"`
	IsActive      bool              `json:"is_active"`
	Addresses     []AddressResponse `json:"addresses"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error)
	DeleteClient(ctx context.Context, id string) error
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	GetClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error)
}

// --- Implementation ---

type clientService struct {
	clientRepo repository.ClientRepository
	txManager  repository.TransactionManager
}

func NewClientService(clientRepo repository.ClientRepository, txManager repository.TransactionManager) ClientService {
	return &clientService{clientRepo: clientRepo, txManager: txManager}
}

// --- Validation helpers ---

var validAddressTypes = map[string]bool{
	model.AddressTypeBilling:  true,
	model.AddressTypeDelivery: true,
}

func validateAddresses(addresses []AddressPayload) error {
	for i, addr := range addresses {
		if !validAddressTypes[addr.AddressType] {
			return fmt.Errorf("%w: addresses[%d]: address_type must be BILLING or DELIVERY", status.ErrValidation, i)
		}
		if addr.FullAddress == "" {
			return fmt.Errorf("%w: addresses[%d]: full_address is required", status.ErrValidation, i)
		}
		// Delivery addresses feed the pricing estimator and need a country.
		if addr.AddressType == model.AddressTypeDelivery && addr.Country == "" {
			return fmt.Errorf("%w: addresses[%d]: delivery addresses require a country", status.ErrValidation, i)
		}
	}
	return nil
}

func toAddressModels(clientID uuid.UUID, payloads []AddressPayload) []model.ClientAddress {
	addresses := make([]model.ClientAddress, 0, len(payloads))
	for _, p := range payloads {
		addresses = append(addresses, model.ClientAddress{
			ClientID:    clientID,
			AddressType: p.AddressType,
			FullAddress: p.FullAddress,
			Country:     p.Country,
			City:        p.City,
			IsDefault:   p.IsDefault,
		})
	}
	return addresses
}

// --- CRUD ---

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error) {
	if req.Name == "" {
		return ClientResponse{}, fmt.Errorf("%w: name is required", status.ErrValidation)
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return ClientResponse{}, fmt.Errorf("%w: invalid email format", status.ErrValidation)
		}
	}
	if err := validateAddresses(req.Addresses); err != nil {
		return ClientResponse{}, err
	}

	client := &model.Client{
		Name:          req.Name,
		CompanyName:   req.CompanyName,
		TaxCode:       req.TaxCode,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		IsActive:      true,
		Addresses:     toAddressModels(uuid.Nil, req.Addresses), // GORM fills ClientID on cascade create
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}

	return toClientResponse(*client), nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("%w: invalid client id", status.ErrValidation)
	}

	client, err := s.clientRepo.FindByID(ctx, cid)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("client not found: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return ClientResponse{}, fmt.Errorf("%w: name cannot be empty", status.ErrValidation)
		}
		client.Name = *req.Name
	}
	if req.Email != nil && *req.Email != "" {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return ClientResponse{}, fmt.Errorf("%w: invalid email format", status.ErrValidation)
		}
		client.Email = *req.Email
	} else if req.Email != nil {
		client.Email = ""
	}
	if req.CompanyName != nil {
		client.CompanyName = *req.CompanyName
	}
	if req.TaxCode != nil {
		client.TaxCode = *req.TaxCode
	}
	if req.ContactPerson != nil {
		client.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if req.Addresses != nil {
		if err := validateAddresses(*req.Addresses); err != nil {
			return ClientResponse{}, err
		}
	}

	// Field update + address replacement as one unit.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.Update(txCtx, client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		// Replace addresses if provided (delete-all + re-create strategy)
		if req.Addresses != nil {
			if err := s.clientRepo.DeleteAddressesByClientID(txCtx, cid); err != nil {
				return fmt.Errorf("failed to delete old addresses: %w", err)
			}
			newAddrs := toAddressModels(cid, *req.Addresses)
			if err := s.clientRepo.CreateAddresses(txCtx, newAddrs); err != nil {
				return fmt.Errorf("failed to create addresses: %w", err)
			}
			client.Addresses = newAddrs
		}

		return nil
	})
	if err != nil {
		return ClientResponse{}, err
	}

	return toClientResponse(*client), nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	cid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid client id", status.ErrValidation)
	}
	return s.clientRepo.Delete(ctx, cid)
}

func (s *clientService) GetClient(ctx context.Context, id string) (ClientResponse, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("%w: invalid client id", status.ErrValidation)
	}
	client, err := s.clientRepo.FindByID(ctx, cid)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("client not found: %w", err)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) GetClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	clients, total, err := s.clientRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		res = append(res, toClientResponse(c))
	}
	return res, total, nil
}

// --- Response mappers ---

func toClientResponse(c model.Client) ClientResponse {
	addresses := make([]AddressResponse, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		addresses = append(addresses, AddressResponse{
			ID:          a.ID,
			ClientID:    a.ClientID,
			AddressType: a.AddressType,
			FullAddress: a.FullAddress,
			Country:     a.Country,
			City:        a.City,
			IsDefault:   a.IsDefault,
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
		})
	}

	return ClientResponse{
		ID:            c.ID,
		Name:          c.Name,
		CompanyName:   c.CompanyName,
		TaxCode:       c.TaxCode,
		ContactPerson: c.ContactPerson,
		Phone:         c.Phone,
		Email:         c.Email,
		IsActive:      c.IsActive,
		Addresses:     addresses,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
