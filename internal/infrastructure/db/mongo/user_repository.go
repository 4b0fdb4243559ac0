package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
)

const collectionUsers = "users"

// Unique index names double as the lookup key when mapping duplicate-key
// errors back to the offending field.
var userUniqueIndexes = []struct {
	name   string
	key    string
	field  string
	sparse bool
}{
	{name: "uniq_email", key: "email", field: "email"},
	{name: "uniq_phone", key: "phone", field: "phone"},
	{name: "uniq_aadhaar", key: "aadhaar_number", field: "aadhaarNumber", sparse: true},
	{name: "uniq_license", key: "license_number", field: "licenseNumber", sparse: true},
}

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoLivestockCount struct {
	Total      int `bson:"total"`
	Vaccinated int `bson:"vaccinated"`
}

type mongoFarmData struct {
	TotalAcres float64 `bson:"total_acres"`
	Livestock  struct {
		Pigs    mongoLivestockCount `bson:"pigs"`
		Poultry mongoLivestockCount `bson:"poultry"`
		Cattle  mongoLivestockCount `bson:"cattle"`
		Goats   mongoLivestockCount `bson:"goats"`
	} `bson:"livestock"`
}

type mongoDocuments struct {
	License string `bson:"license,omitempty"`
	Degree  string `bson:"degree,omitempty"`
	IDProof string `bson:"id_proof,omitempty"`
}

// mongoUser leaves optional unique fields out of the document when empty so
// the partial indexes ignore them.
type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	Phone         string             `bson:"phone"`
	PasswordHash  string             `bson:"password_hash"`
	Role          string             `bson:"role"`
	Address       string             `bson:"address,omitempty"`
	AadhaarNumber string             `bson:"aadhaar_number,omitempty"`
	Village       string             `bson:"village,omitempty"`
	ProfileImage  string             `bson:"profile_image,omitempty"`
	FarmSize      string             `bson:"farm_size,omitempty"`
	LivestockType string             `bson:"livestock_type,omitempty"`
	FarmData      mongoFarmData      `bson:"farm_data"`

	Qualification  string          `bson:"qualification,omitempty"`
	Specialization string          `bson:"specialization,omitempty"`
	Experience     string          `bson:"experience,omitempty"`
	LicenseNumber  string          `bson:"license_number,omitempty"`
	Organization   string          `bson:"organization,omitempty"`
	IsApproved     bool            `bson:"is_approved"`
	Documents      *mongoDocuments `bson:"documents,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toMongoFarmData(fd domain.FarmData) mongoFarmData {
	var m mongoFarmData
	m.TotalAcres = fd.TotalAcres
	m.Livestock.Pigs = mongoLivestockCount(fd.Livestock.Pigs)
	m.Livestock.Poultry = mongoLivestockCount(fd.Livestock.Poultry)
	m.Livestock.Cattle = mongoLivestockCount(fd.Livestock.Cattle)
	m.Livestock.Goats = mongoLivestockCount(fd.Livestock.Goats)
	return m
}

func (m mongoFarmData) toDomain() domain.FarmData {
	return domain.FarmData{
		TotalAcres: m.TotalAcres,
		Livestock: domain.Livestock{
			Pigs:    domain.LivestockCount(m.Livestock.Pigs),
			Poultry: domain.LivestockCount(m.Livestock.Poultry),
			Cattle:  domain.LivestockCount(m.Livestock.Cattle),
			Goats:   domain.LivestockCount(m.Livestock.Goats),
		},
	}
}

func toMongoUser(u *domain.User) mongoUser {
	doc := mongoUser{
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		Address:        u.Address,
		AadhaarNumber:  u.AadhaarNumber,
		Village:        u.Village,
		ProfileImage:   u.ProfileImage,
		FarmSize:       u.FarmSize,
		LivestockType:  u.LivestockType,
		FarmData:       toMongoFarmData(u.FarmData),
		Qualification:  u.Qualification,
		Specialization: u.Specialization,
		Experience:     u.Experience,
		LicenseNumber:  u.LicenseNumber,
		Organization:   u.Organization,
		IsApproved:     u.IsApproved,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if u.Documents != nil && !u.Documents.Empty() {
		doc.Documents = &mongoDocuments{License: u.Documents.License, Degree: u.Documents.Degree, IDProof: u.Documents.IDProof}
	}
	return doc
}

func (m *mongoUser) toDomain() *domain.User {
	u := &domain.User{
		ID:             m.ID.Hex(),
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		PasswordHash:   m.PasswordHash,
		Role:           domain.Role(m.Role),
		Address:        m.Address,
		AadhaarNumber:  m.AadhaarNumber,
		Village:        m.Village,
		ProfileImage:   m.ProfileImage,
		FarmSize:       m.FarmSize,
		LivestockType:  m.LivestockType,
		FarmData:       m.FarmData.toDomain(),
		Qualification:  m.Qualification,
		Specialization: m.Specialization,
		Experience:     m.Experience,
		LicenseNumber:  m.LicenseNumber,
		Organization:   m.Organization,
		IsApproved:     m.IsApproved,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
	if m.Documents != nil {
		u.Documents = &domain.Documents{License: m.Documents.License, Degree: m.Documents.Degree, IDProof: m.Documents.IDProof}
	}
	return u
}

// Create inserts user. Uniqueness is enforced by the indexes, so two
// concurrent registrations with the same email cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoUser(user)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflictFromDuplicate(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateFarmData replaces farm_data wholesale and returns the updated record.
func (r *UserRepository) UpdateFarmData(ctx context.Context, id string, farmData domain.FarmData) (*domain.User, error) {
	return r.set(ctx, id, bson.M{"farm_data": toMongoFarmData(farmData)})
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, id, ref string) (*domain.User, error) {
	return r.set(ctx, id, bson.M{"profile_image": ref})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.set(ctx, id, bson.M{"password_hash": passwordHash})
	return err
}

func (r *UserRepository) set(ctx context.Context, id string, fields bson.M) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoUser
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique indexes on the users collection. Optional
// identifiers get partial indexes that only cover string values.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := make([]mongo.IndexModel, 0, len(userUniqueIndexes)+1)
	for _, ix := range userUniqueIndexes {
		opts := options.Index().SetName(ix.name).SetUnique(true)
		if ix.sparse {
			opts.SetPartialFilterExpression(bson.M{ix.key: bson.M{"$type": "string"}})
		}
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: ix.key, Value: 1}}, Options: opts})
	}
	indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: "role", Value: 1}}})

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// conflictFromDuplicate names the field behind a duplicate-key error using
// the index name the server reports.
func conflictFromDuplicate(err error) error {
	msg := err.Error()
	for _, ix := range userUniqueIndexes {
		if strings.Contains(msg, ix.name) {
			return &domain.ConflictError{Field: ix.field}
		}
	}
	return &domain.ConflictError{Field: "user"}
}
