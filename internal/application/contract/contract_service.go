package contract

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
)

// ContractService manages funeral-right contracts, their titular and
// beneficiary ledgers and title documents.
type ContractService struct {
	db       *persistence.Database
	repos    *persistence.Repositories
	bus      shared.EventPublisher
	storage  storage.DocumentStorage
	renderer *printing.Renderer
	log      *zap.Logger
}

// NewContractService creates the service
func NewContractService(db *persistence.Database, repos *persistence.Repositories, bus shared.EventPublisher, docs storage.DocumentStorage, renderer *printing.Renderer, log *zap.Logger) *ContractService {
	return &ContractService{db: db, repos: repos, bus: bus, storage: docs, renderer: renderer, log: log}
}

// PersonInput references an existing person or describes a new one
type PersonInput struct {
	PersonID  *uuid.UUID
	FirstName string
	LastName  string
	DniNif    string
	Email     string
	Phone     string
	Address   string
}

// CreateContractInput creates a funeral-right contract over a grave
type CreateContractInput struct {
	SepulturaID       uuid.UUID
	Tipo              string
	FechaInicio       time.Time
	FechaFin          time.Time
	Legacy99Years     bool
	AnnualFeeAmount   decimal.Decimal
	Holder            PersonInput
	HolderIsPensioner bool
	Beneficiary       *PersonInput
}

// CreateContract activates a contract on a DISPONIBLE grave: the grave
// becomes OCUPADA, the holder ledger is opened and the CONTRATO movement is
// written, all in one transaction.
func (s *ContractService) CreateContract(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateContractInput) (*contract.DerechoFunerarioContrato, error) {
	sep, err := s.repos.Sepulturas.FindByID(ctx, tenantID, input.SepulturaID)
	if err != nil {
		return nil, err
	}
	if sep.Estado != registry.EstadoDisponible {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("contracts require a DISPONIBLE grave, got %s", sep.Estado))
	}
	if _, err := s.repos.Contratos.FindActiveBySepultura(ctx, tenantID, sep.ID); err == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "the grave already has an active contract")
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	c, err := contract.NewDerechoFunerarioContrato(tenantID, sep.ID,
		contract.DerechoTipo(input.Tipo), input.FechaInicio, input.FechaFin,
		input.Legacy99Years, input.AnnualFeeAmount)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		c.SetCreatedBy(*userID)
	}
	if err := sep.Occupy(); err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)

		holderID, err := resolvePerson(ctx, repos, tenantID, input.Holder)
		if err != nil {
			return err
		}
		if err := repos.Contratos.Save(ctx, c); err != nil {
			return err
		}

		record := contract.NewOwnershipRecord(tenantID, c.ID, holderID, input.FechaInicio)
		if input.HolderIsPensioner {
			record.SetPensioner(nil)
		}
		if err := repos.Ownership.Save(ctx, record); err != nil {
			return err
		}

		if input.Beneficiary != nil {
			benefID, err := resolvePerson(ctx, repos, tenantID, *input.Beneficiary)
			if err != nil {
				return err
			}
			if err := repos.Beneficiarios.Save(ctx, contract.NewBeneficiario(tenantID, c.ID, benefID, input.FechaInicio)); err != nil {
				return err
			}
		}

		if err := repos.Sepulturas.Save(ctx, sep); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, sep.ID, registry.MovimientoContrato,
			fmt.Sprintf("Contrato %s hasta %s", c.Tipo, c.FechaFin.Format("2006-01-02")), userID))
	})
	if err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, c.GetDomainEvents()...); err != nil {
		s.log.Warn("failed to publish contract events", zap.Error(err))
	}
	c.ClearDomainEvents()
	sep.ClearDomainEvents()
	return c, nil
}

func resolvePerson(ctx context.Context, repos *persistence.Repositories, tenantID uuid.UUID, input PersonInput) (uuid.UUID, error) {
	if input.PersonID != nil {
		p, err := repos.Persons.FindByID(ctx, tenantID, *input.PersonID)
		if err != nil {
			return uuid.Nil, err
		}
		return p.ID, nil
	}
	if input.DniNif != "" {
		if p, err := repos.Persons.FindByDniNif(ctx, tenantID, input.DniNif); err == nil {
			return p.ID, nil
		} else if err != shared.ErrNotFound {
			return uuid.Nil, err
		}
	}
	p, err := registry.NewPerson(tenantID, input.FirstName, input.LastName, input.DniNif)
	if err != nil {
		return uuid.Nil, err
	}
	p.Email = input.Email
	p.Phone = input.Phone
	p.Address = input.Address
	if err := repos.Persons.Save(ctx, p); err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// ContractDetail aggregates a contract with its ledgers
type ContractDetail struct {
	Contract          *contract.DerechoFunerarioContrato
	Holder            *contract.OwnershipRecord
	HolderPerson      *registry.Person
	ActiveBeneficiary *contract.Beneficiario
	OwnershipHistory  []contract.OwnershipRecord
	Events            []contract.ContractEvent
}

// GetContract loads a contract with holder, beneficiary, history and audit trail
func (s *ContractService) GetContract(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractDetail, error) {
	c, err := s.repos.Contratos.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	detail := &ContractDetail{Contract: c}

	if holder, err := s.repos.Ownership.FindActiveByContract(ctx, tenantID, c.ID); err == nil {
		detail.Holder = holder
		if p, err := s.repos.Persons.FindByID(ctx, tenantID, holder.PersonID); err == nil {
			detail.HolderPerson = p
		}
	} else if err != shared.ErrNotFound {
		return nil, err
	}
	if benef, err := s.repos.Beneficiarios.FindActiveByContract(ctx, tenantID, c.ID); err == nil {
		detail.ActiveBeneficiary = benef
	} else if err != shared.ErrNotFound {
		return nil, err
	}
	if history, err := s.repos.Ownership.FindHistoryByContract(ctx, tenantID, c.ID); err == nil {
		detail.OwnershipHistory = history
	}
	if events, err := s.repos.ContractEvents.FindByContract(ctx, tenantID, c.ID); err == nil {
		detail.Events = events
	}
	return detail, nil
}

// GetActiveBySepultura loads the active contract of a grave
func (s *ContractService) GetActiveBySepultura(ctx context.Context, tenantID, sepulturaID uuid.UUID) (*contract.DerechoFunerarioContrato, error) {
	return s.repos.Contratos.FindActiveBySepultura(ctx, tenantID, sepulturaID)
}

// NominateBeneficiary replaces the active beneficiary of a contract
func (s *ContractService) NominateBeneficiary(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, contractID uuid.UUID, person PersonInput) (*contract.Beneficiario, error) {
	c, err := s.repos.Contratos.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	var nuevo *contract.Beneficiario
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)

		personID, err := resolvePerson(ctx, repos, tenantID, person)
		if err != nil {
			return err
		}
		today := time.Now()
		if current, err := repos.Beneficiarios.FindActiveByContract(ctx, tenantID, c.ID); err == nil {
			if err := current.Close(today); err != nil {
				return err
			}
			if err := repos.Beneficiarios.Save(ctx, current); err != nil {
				return err
			}
		} else if err != shared.ErrNotFound {
			return err
		}

		nuevo = contract.NewBeneficiario(tenantID, c.ID, personID, today)
		if err := repos.Beneficiarios.Save(ctx, nuevo); err != nil {
			return err
		}
		if err := repos.ContractEvents.Append(ctx, contract.NewContractEvent(
			tenantID, c.ID, nil, contract.ContractEventBeneficiarioCambio, "Beneficiario designado", userID)); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, c.SepulturaID, registry.MovimientoBeneficiario, "Beneficiario designado", userID))
	})
	if err != nil {
		return nil, err
	}
	return nuevo, nil
}

// RemoveBeneficiary closes the active beneficiary slice
func (s *ContractService) RemoveBeneficiary(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, contractID uuid.UUID) error {
	c, err := s.repos.Contratos.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return err
	}
	current, err := s.repos.Beneficiarios.FindActiveByContract(ctx, tenantID, c.ID)
	if err != nil {
		return err
	}
	if err := current.Close(time.Now()); err != nil {
		return err
	}

	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Beneficiarios.Save(ctx, current); err != nil {
			return err
		}
		if err := repos.ContractEvents.Append(ctx, contract.NewContractEvent(
			tenantID, c.ID, nil, contract.ContractEventBeneficiarioCambio, "Beneficiario retirado", userID)); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, c.SepulturaID, registry.MovimientoBeneficiario, "Beneficiario retirado", userID))
	})
}

// SetPensioner flags or clears the pensioner condition on the active holder.
// The discount only applies from the flag year onwards; a since date in the
// past is rejected unless allowRetroactive is set.
func (s *ContractService) SetPensioner(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, contractID uuid.UUID, pensioner bool, since *time.Time, allowRetroactive bool) (*contract.OwnershipRecord, error) {
	if pensioner && since != nil && !allowRetroactive {
		if shared.DateOnly(*since).Before(shared.DateOnly(time.Now())) {
			return nil, shared.NewDomainError("INVALID_INPUT", "a retroactive pensioner date requires the retroactive flag")
		}
	}
	c, err := s.repos.Contratos.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	holder, err := s.repos.Ownership.FindActiveByContract(ctx, tenantID, c.ID)
	if err != nil {
		return nil, err
	}
	detail := "Condición de pensionista retirada"
	if pensioner {
		holder.SetPensioner(since)
		detail = fmt.Sprintf("Pensionista desde %s", holder.PensionerSinceDate.Format("2006-01-02"))
	} else {
		holder.ClearPensioner()
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Ownership.Save(ctx, holder); err != nil {
			return err
		}
		if err := repos.ContractEvents.Append(ctx, contract.NewContractEvent(
			tenantID, c.ID, nil, contract.ContractEventPensionista, detail, userID)); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, c.SepulturaID, registry.MovimientoPensionista, detail, userID))
	})
	if err != nil {
		return nil, err
	}
	return holder, nil
}

// EmitTitle renders the funeral-right title PDF and records the emission.
// A second emission is recorded as a duplicate.
func (s *ContractService) EmitTitle(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, contractID uuid.UUID) ([]byte, error) {
	if s.renderer == nil || !s.renderer.Enabled() {
		return nil, shared.NewDomainError("INVALID_STATE", "pdf rendering is disabled")
	}
	detail, err := s.GetContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	if detail.HolderPerson == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "the contract has no active holder")
	}
	org, err := s.repos.Organizations.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sep, err := s.repos.Sepulturas.FindByID(ctx, tenantID, detail.Contract.SepulturaID)
	if err != nil {
		return nil, err
	}

	duplicate := false
	for _, ev := range detail.Events {
		if ev.EventType == contract.ContractEventTituloEmitido {
			duplicate = true
			break
		}
	}

	pdf, err := s.renderer.RenderTitulo(ctx, printing.TituloData{
		OrganizationName: org.Name,
		HolderName:       detail.HolderPerson.FullName(),
		HolderDniNif:     detail.HolderPerson.DniNif,
		GraveLocation:    sep.LocationLabel(),
		ContractType:     string(detail.Contract.Tipo),
		FechaInicio:      detail.Contract.FechaInicio,
		FechaFin:         detail.Contract.FechaFin,
		Duplicate:        duplicate,
		IssuedAt:         time.Now(),
	})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/contracts/%s/titulo-%d.pdf", tenantID, contractID, time.Now().Unix())
	if err := s.storage.Put(ctx, key, bytes.NewReader(pdf), "application/pdf"); err != nil {
		return nil, err
	}

	eventType := contract.ContractEventTituloEmitido
	if duplicate {
		eventType = contract.ContractEventTituloDuplicado
	}
	if err := s.repos.ContractEvents.Append(ctx, contract.NewContractEvent(
		tenantID, contractID, nil, eventType, key, userID)); err != nil {
		return nil, err
	}
	return pdf, nil
}

// Extinguish ends a contract and releases the grave to DISPONIBLE
func (s *ContractService) Extinguish(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, contractID uuid.UUID) error {
	c, err := s.repos.Contratos.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return err
	}
	if err := c.Extinguish(); err != nil {
		return err
	}
	sep, err := s.repos.Sepulturas.FindByID(ctx, tenantID, c.SepulturaID)
	if err != nil {
		return err
	}
	if sep.Estado == registry.EstadoOcupada {
		if err := sep.ChangeEstado(registry.EstadoDisponible); err != nil {
			return err
		}
	}

	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repos := persistence.ForTransaction(tx)
		if err := repos.Contratos.Save(ctx, c); err != nil {
			return err
		}
		if err := repos.Sepulturas.Save(ctx, sep); err != nil {
			return err
		}
		return repos.Movimientos.Append(ctx, registry.NewMovimiento(
			tenantID, sep.ID, registry.MovimientoContrato, "Contrato extinguido", userID))
	})
}

// ExpiringContracts lists active contracts ending within the given days
func (s *ContractService) ExpiringContracts(ctx context.Context, tenantID uuid.UUID, days int) ([]contract.DerechoFunerarioContrato, error) {
	return s.repos.Contratos.FindExpiringBefore(ctx, tenantID, time.Now().AddDate(0, 0, days))
}
