// Package mongostore implements the store interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/02priyeshraj/QR_Menu_Backend/config"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
)

func New(db *mongo.Database) store.Stores {
	return store.Stores{
		Users:     &Users{coll: db.Collection(config.UserCollection)},
		QRCodes:   &QRCodes{coll: db.Collection(config.QRCodeCollection)},
		Orders:    &Orders{coll: db.Collection(config.OrderCollection)},
		MenuItems: &MenuItems{coll: db.Collection(config.MenuItemCollection)},
		Push:      &PushSubscriptions{coll: db.Collection(config.PushSubscriptionCollection)},
		Inventory: &Inventory{coll: db.Collection(config.InventoryCollection)},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

// equalFold builds a case-insensitive whole-string match.
func equalFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func insert(ctx context.Context, coll *mongo.Collection, id *primitive.ObjectID, doc any) error {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	_, err := coll.InsertOne(ctx, doc)
	return translate(err)
}

func replace(ctx context.Context, coll *mongo.Collection, filter, doc any) error {
	res, err := coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter any) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type Users struct{ coll *mongo.Collection }

func (s *Users) Create(ctx context.Context, user *models.User) error {
	return insert(ctx, s.coll, &user.ID, user)
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"_id": id})
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"email": equalFold(email)})
}

func (s *Users) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"phone": phone})
}

func (s *Users) FindByRestaurantName(ctx context.Context, name string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{
		"restaurantName": equalFold(name),
		"role":           bson.M{"$ne": models.RoleStaff},
	})
}

func (s *Users) Update(ctx context.Context, user *models.User) error {
	return replace(ctx, s.coll, bson.M{"_id": user.ID}, user)
}

func (s *Users) ListStaff(ctx context.Context, ownerID primitive.ObjectID) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.User](ctx, s.coll, bson.M{"ownerId": ownerID, "role": models.RoleStaff}, opts)
}

func (s *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id})
}

type QRCodes struct{ coll *mongo.Collection }

func (s *QRCodes) Create(ctx context.Context, qr *models.QRCode) error {
	return insert(ctx, s.coll, &qr.ID, qr)
}

func (s *QRCodes) FindByID(ctx context.Context, id primitive.ObjectID) (*models.QRCode, error) {
	return findOne[models.QRCode](ctx, s.coll, bson.M{"_id": id})
}

func (s *QRCodes) FindActiveByToken(ctx context.Context, token string) (*models.QRCode, error) {
	return findOne[models.QRCode](ctx, s.coll, bson.M{"token": token, "isActive": true})
}

func (s *QRCodes) ExistsActiveTable(ctx context.Context, userID primitive.ObjectID, tableNumber string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{
		"userId":      userID,
		"type":        models.QRTypeTable,
		"tableNumber": tableNumber,
		"isActive":    true,
	}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *QRCodes) IncrementScan(ctx context.Context, token string, at time.Time) (*models.QRCode, error) {
	update := bson.M{
		"$inc": bson.M{"scans": 1},
		"$set": bson.M{"lastScannedAt": at, "updatedAt": at},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var qr models.QRCode
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"token": token, "isActive": true}, update, opts).Decode(&qr)
	if err != nil {
		return nil, translate(err)
	}
	return &qr, nil
}

func (s *QRCodes) ListByUser(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]models.QRCode, error) {
	filter := bson.M{"userId": userID}
	if activeOnly {
		filter["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.QRCode](ctx, s.coll, filter, opts)
}

func (s *QRCodes) RecentlyScanned(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.QRCode, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastScannedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return findAll[models.QRCode](ctx, s.coll, bson.M{"userId": userID, "lastScannedAt": bson.M{"$exists": true}}, opts)
}

func (s *QRCodes) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id})
}

type Orders struct{ coll *mongo.Collection }

func (s *Orders) Create(ctx context.Context, order *models.Order) error {
	return insert(ctx, s.coll, &order.ID, order)
}

func (s *Orders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return findOne[models.Order](ctx, s.coll, bson.M{"_id": id})
}

func (s *Orders) Update(ctx context.Context, order *models.Order) error {
	return replace(ctx, s.coll, bson.M{"_id": order.ID}, order)
}

func (s *Orders) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id})
}

func orderQuery(f store.OrderFilter) bson.M {
	q := bson.M{}
	if !f.UserID.IsZero() {
		q["userId"] = f.UserID
	}
	switch {
	case f.Status != "":
		q["status"] = f.Status
	case f.ExcludeStatus != "":
		q["status"] = bson.M{"$ne": f.ExcludeStatus}
	}
	if f.CustomerPhone != "" {
		q["customerPhone"] = f.CustomerPhone
	}
	created := bson.M{}
	if !f.CreatedFrom.IsZero() {
		created["$gte"] = f.CreatedFrom
	}
	if !f.CreatedTo.IsZero() {
		created["$lt"] = f.CreatedTo
	}
	if len(created) > 0 {
		q["createdAt"] = created
	}
	return q
}

func (s *Orders) Find(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return findAll[models.Order](ctx, s.coll, orderQuery(f), opts)
}

func (s *Orders) Count(ctx context.Context, f store.OrderFilter) (int64, error) {
	return s.coll.CountDocuments(ctx, orderQuery(f))
}

type MenuItems struct{ coll *mongo.Collection }

func (s *MenuItems) Create(ctx context.Context, item *models.MenuItem) error {
	return insert(ctx, s.coll, &item.ID, item)
}

func (s *MenuItems) FindByID(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	return findOne[models.MenuItem](ctx, s.coll, bson.M{"_id": id})
}

func (s *MenuItems) Update(ctx context.Context, item *models.MenuItem) error {
	return replace(ctx, s.coll, bson.M{"_id": item.ID}, item)
}

func (s *MenuItems) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id})
}

func (s *MenuItems) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MenuItems) List(ctx context.Context, f store.MenuFilter) ([]models.MenuItem, error) {
	q := bson.M{"userId": f.UserID}
	if f.ActiveOnly {
		q["isActive"] = true
	}
	if f.AvailableOnly {
		q["isAvailable"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	return findAll[models.MenuItem](ctx, s.coll, q, opts)
}

type PushSubscriptions struct{ coll *mongo.Collection }

func (s *PushSubscriptions) Upsert(ctx context.Context, sub *models.PushSubscription) (*models.PushSubscription, error) {
	now := sub.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}
	set := bson.M{"keys": sub.Keys, "updatedAt": now}
	unset := bson.M{}
	if sub.UserID != nil {
		set["userId"] = *sub.UserID
	} else {
		unset["userId"] = ""
	}
	if sub.Phone != "" {
		set["phone"] = sub.Phone
	} else {
		unset["phone"] = ""
	}
	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": createdAt},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.PushSubscription
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"endpoint": sub.Endpoint}, update, opts).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (s *PushSubscriptions) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error) {
	return findAll[models.PushSubscription](ctx, s.coll, bson.M{"userId": userID})
}

func (s *PushSubscriptions) FindByPhone(ctx context.Context, phone string) ([]models.PushSubscription, error) {
	return findAll[models.PushSubscription](ctx, s.coll, bson.M{"phone": phone})
}

func (s *PushSubscriptions) Latest(ctx context.Context) (*models.PushSubscription, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findOne[models.PushSubscription](ctx, s.coll, bson.M{}, opts)
}

func (s *PushSubscriptions) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id})
}

type Inventory struct{ coll *mongo.Collection }

func (s *Inventory) Create(ctx context.Context, item *models.InventoryItem) error {
	return insert(ctx, s.coll, &item.ID, item)
}

func (s *Inventory) FindByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.InventoryItem, error) {
	return findOne[models.InventoryItem](ctx, s.coll, bson.M{"_id": id, "ownerId": ownerID})
}

func (s *Inventory) FindByName(ctx context.Context, ownerID primitive.ObjectID, name string) (*models.InventoryItem, error) {
	return findOne[models.InventoryItem](ctx, s.coll, bson.M{"ownerId": ownerID, "name": equalFold(name)})
}

func (s *Inventory) Update(ctx context.Context, item *models.InventoryItem) error {
	return replace(ctx, s.coll, bson.M{"_id": item.ID, "ownerId": item.OwnerID}, item)
}

func (s *Inventory) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id, "ownerId": ownerID})
}

func (s *Inventory) List(ctx context.Context, ownerID primitive.ObjectID) ([]models.InventoryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[models.InventoryItem](ctx, s.coll, bson.M{"ownerId": ownerID}, opts)
}
