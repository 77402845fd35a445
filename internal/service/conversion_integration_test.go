//go:build integration

package service

// Integration tests against a real Postgres via testcontainers.
// Run with: go test -tags integration ./internal/service/... -v
//
// These cover the behavior the in-memory stubs cannot: row locking under
// concurrent conversions, the guarded UPDATE, and advisory-locked code
// generation.

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/dto"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/infra"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/model"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("gys_test"),
		tcPostgres.WithUsername("gys"),
		tcPostgres.WithPassword("gys"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func seedListaDB(t *testing.T, db *gorm.DB, requerida float64) (*model.Lista, *model.ListaItem) {
	t.Helper()

	proyecto := &model.Proyecto{Codigo: "P001", Nombre: "Planta Norte"}
	require.NoError(t, db.Create(proyecto).Error)

	equipo := &model.Equipo{Codigo: "EQ-001", Descripcion: "Tablero de distribución", PrecioReferencia: decimal.NewFromInt(90)}
	require.NoError(t, db.Create(equipo).Error)

	plazo := 15
	cotizacion := &model.Cotizacion{ProveedorNombre: "Eléctrica SAC", PrecioUnitario: decimal.NewFromInt(100), TiempoEntregaDias: &plazo}
	require.NoError(t, db.Create(cotizacion).Error)

	lista := &model.Lista{
		ProyectoID:          proyecto.ID,
		Codigo:              "LST-001",
		Nombre:              "Equipos eléctricos",
		Estado:              model.EstadoListaAprobada,
		PresupuestoPlaneado: decimal.NewFromInt(1000),
	}
	require.NoError(t, db.Create(lista).Error)

	item := &model.ListaItem{
		ListaID:                  lista.ID,
		EquipoID:                 &equipo.ID,
		Descripcion:              "Tablero de distribución",
		CantidadRequerida:        decimal.NewFromFloat(requerida),
		CotizacionSeleccionadaID: &cotizacion.ID,
	}
	require.NoError(t, db.Create(item).Error)
	return lista, item
}

func buildSvcDB(db *gorm.DB) ConversionService {
	return NewConversionService(
		repository.NewListaRepository(db),
		repository.NewPedidoRepository(db),
		nil, 0)
}

func TestIntegracion_ConversionYSecuencia(t *testing.T) {
	db := setupDB(t)
	svc := buildSvcDB(db)
	lista, item := seedListaDB(t, db, 10)

	req := dto.ConvertirRequest{
		ListaID:        lista.ID.String(),
		Items:          []dto.ConvertirItemRequest{{ListaItemID: item.ID.String(), Cantidad: decimal.NewFromInt(4)}},
		FechaNecesaria: time.Now().AddDate(0, 0, 14),
	}
	resp, err := svc.Convertir(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-P001-001", resp.Codigo)

	var guardado model.ListaItem
	require.NoError(t, db.First(&guardado, "id = ?", item.ID).Error)
	assert.True(t, guardado.CantidadPedida.Equal(decimal.NewFromInt(4)))

	var listaGuardada model.Lista
	require.NoError(t, db.First(&listaGuardada, "id = ?", lista.ID).Error)
	assert.Equal(t, model.EstadoListaPorRevisar, listaGuardada.Estado)

	// Saldo restante: completa la lista y la secuencia avanza en 1.
	req.Items[0].Cantidad = decimal.NewFromInt(6)
	resp, err = svc.Convertir(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-P001-002", resp.Codigo)

	require.NoError(t, db.First(&listaGuardada, "id = ?", lista.ID).Error)
	assert.Equal(t, model.EstadoListaAprobada, listaGuardada.Estado)
}

func TestIntegracion_SecuenciaIgnoraProyectosConPrefijoComun(t *testing.T) {
	db := setupDB(t)
	svc := buildSvcDB(db)
	lista, item := seedListaDB(t, db, 10)

	// P0011 comparte prefijo de código con P001: "ORDER-P0011-002" matchea
	// el LIKE "ORDER-P001-%" con sufijo "1-002". La secuencia de P001 debe
	// ignorarlo en vez de fallar en el CAST.
	otro := &model.Proyecto{Codigo: "P0011", Nombre: "Planta Sur"}
	require.NoError(t, db.Create(otro).Error)
	otraLista := &model.Lista{
		ProyectoID: otro.ID,
		Codigo:     "LST-002",
		Nombre:     "Repuestos",
		Estado:     model.EstadoListaAprobada,
	}
	require.NoError(t, db.Create(otraLista).Error)
	require.NoError(t, db.Create(&model.Pedido{
		Codigo:         "ORDER-P0011-002",
		ListaID:        otraLista.ID,
		ProyectoID:     otro.ID,
		SolicitanteID:  uuid.New(),
		Estado:         model.EstadoPedidoBorrador,
		FechaNecesaria: time.Now().AddDate(0, 0, 7),
	}).Error)

	req := dto.ConvertirRequest{
		ListaID:        lista.ID.String(),
		Items:          []dto.ConvertirItemRequest{{ListaItemID: item.ID.String(), Cantidad: decimal.NewFromInt(4)}},
		FechaNecesaria: time.Now().AddDate(0, 0, 14),
	}
	resp, err := svc.Convertir(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-P001-001", resp.Codigo)
}

func TestIntegracion_ConversionesConcurrentes(t *testing.T) {
	db := setupDB(t)
	svc := buildSvcDB(db)
	lista, item := seedListaDB(t, db, 10)

	// Dos conversiones simultáneas por las 10 unidades completas: los locks
	// de fila serializan; la segunda ve el saldo consumido y falla con
	// "sin ítems válidos". Nunca pueden quedar 20 pedidas contra 10.
	req := dto.ConvertirRequest{
		ListaID:        lista.ID.String(),
		Items:          []dto.ConvertirItemRequest{{ListaItemID: item.ID.String(), Cantidad: decimal.NewFromInt(10)}},
		FechaNecesaria: time.Now().AddDate(0, 0, 14),
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Convertir(context.Background(), uuid.New(), req)
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, err := range errs {
		if err == nil {
			exitos++
		} else {
			assert.ErrorIs(t, err, ErrSinItemsValidos)
		}
	}
	assert.Equal(t, 1, exitos)

	var guardado model.ListaItem
	require.NoError(t, db.First(&guardado, "id = ?", item.ID).Error)
	assert.True(t, guardado.CantidadPedida.Equal(decimal.NewFromInt(10)))

	var totalPedido decimal.Decimal
	require.NoError(t, db.Model(&model.PedidoItem{}).
		Select("COALESCE(SUM(cantidad), 0)").
		Where("lista_item_id = ?", item.ID).
		Scan(&totalPedido).Error)
	assert.True(t, totalPedido.Equal(decimal.NewFromInt(10)))
}
