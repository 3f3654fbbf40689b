package main

import (
	"errors"
	"flag"
	"fmt"

	"sangh-connect/pkg/config"
	"sangh-connect/pkg/database"
	"sangh-connect/pkg/logger"
	"sangh-connect/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func main() {
	var bearers int
	flag.IntVar(&bearers, "bearers", 3, "office bearers to create per Sangh")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, bearers, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

type seedSangh struct {
	name     string
	level    models.SanghLevel
	children []seedSangh
}

var hierarchy = seedSangh{
	name:  "Akhil Bharatiya Sangh",
	level: models.LevelNational,
	children: []seedSangh{
		{
			name:  "Maharashtra Sangh",
			level: models.LevelState,
			children: []seedSangh{
				{name: "Pune District Sangh", level: models.LevelDistrict, children: []seedSangh{
					{name: "Kothrud Sangh", level: models.LevelCity},
				}},
				{name: "Nagpur District Sangh", level: models.LevelDistrict},
			},
		},
		{
			name:  "Karnataka Sangh",
			level: models.LevelState,
			children: []seedSangh{
				{name: "Bengaluru Urban Sangh", level: models.LevelDistrict},
			},
		},
	},
}

var bearerRoles = []string{
	models.MemberRolePresident,
	models.MemberRoleSecretary,
	models.MemberRoleTreasurer,
}

func seedDatabase(db *gorm.DB, bearers int, log *logger.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return seedNode(tx, hierarchy, nil, bearers, log)
	})
}

func seedNode(tx *gorm.DB, node seedSangh, parentID *string, bearers int, log *logger.Logger) error {
	var sangh models.Sangh
	result := tx.Where("name = ? AND level = ?", node.name, node.level).First(&sangh)
	switch {
	case result.Error == nil:
		log.Info("Sangh %s already exists, skipping", node.name)
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		sangh = models.Sangh{
			Name:     node.name,
			Level:    node.level,
			ParentID: parentID,
			IsActive: true,
		}
		if err := tx.Create(&sangh).Error; err != nil {
			return fmt.Errorf("failed to create sangh %s: %w", node.name, err)
		}
		log.Info("Created %s sangh: %s (%s)", node.level, sangh.Name, sangh.ID)

		if err := seedBearers(tx, sangh.ID, bearers, log); err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to look up sangh %s: %w", node.name, result.Error)
	}

	for _, child := range node.children {
		if err := seedNode(tx, child, &sangh.ID, bearers, log); err != nil {
			return err
		}
	}
	return nil
}

func seedBearers(tx *gorm.DB, sanghID string, bearers int, log *logger.Logger) error {
	for i := 0; i < bearers; i++ {
		role := models.MemberRoleGeneralMember
		if i < len(bearerRoles) {
			role = bearerRoles[i]
		}

		member := &models.SanghMember{
			SanghID: sanghID,
			UserID:  uuid.New().String(),
			Role:    role,
			CanPost: role != models.MemberRoleGeneralMember,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("failed to create %s for sangh %s: %w", role, sanghID, err)
		}
		log.Info("Created %s member %s for sangh %s", role, member.UserID, sanghID)
	}
	return nil
}
