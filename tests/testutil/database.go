package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/persistence/models"
)

// NewTestDB opens an in-memory SQLite database with the full schema migrated.
// Every call returns an isolated database; it is closed when the test ends.
func NewTestDB(t *testing.T) (*persistence.Database, *persistence.Repositories) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory database")

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// A second connection would see an empty :memory: database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = gormDB.AutoMigrate(
		&models.OrganizationModel{},
		&models.UserModel{},
		&models.MembershipModel{},
		&models.CemeteryModel{},
		&models.SepulturaModel{},
		&models.PersonModel{},
		&models.MovimientoSepulturaModel{},
		&models.ContratoModel{},
		&models.OwnershipRecordModel{},
		&models.BeneficiarioModel{},
		&models.ContractEventModel{},
		&models.TransferCaseModel{},
		&models.TransferPartyModel{},
		&models.TransferDocumentModel{},
		&models.TransferPublicationModel{},
		&models.TicketModel{},
		&models.InvoiceModel{},
		&models.PaymentModel{},
		&models.ExpedienteModel{},
		&models.OrdenTrabajoModel{},
		&models.LapidaStockModel{},
		&models.LapidaStockMovimientoModel{},
		&models.InscripcionModel{},
	)
	require.NoError(t, err, "Failed to migrate test schema")

	db := &persistence.Database{DB: gormDB}
	return db, persistence.NewRepositories(db)
}
