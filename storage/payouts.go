package storage

import (
	"encoding/json"

	"github.com/pkg/errors"

	bolt "go.etcd.io/bbolt"
)

var (
	ErrRunNotFound = errors.New("Payout run not found")
)

// PayoutRun is the summary of one confirmed payout run
type PayoutRun struct {
	ID         int    `json:"id"`
	Date       int64  `json:"date"`
	Network    string `json:"network"`
	Delegate   string `json:"delegate"`
	UserPaid   int    `json:"userPaid"`
	Rewards    int64  `json:"rewards"` // Reward pool distributed during this run
	Total      int64  `json:"total"`   // Sum of all payouts written to the script
	ScriptFile string `json:"scriptFile"`
	ScriptHash string `json:"scriptHash"`
}

// PayoutEntry is a single transfer due to a voter; persisted only as part of a PayoutRun
type PayoutEntry struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

// SavePayoutRun stores the run metadata and its records under a new run id,
// which is returned and also set on run.
func (s *Storage) SavePayoutRun(run *PayoutRun, records []PayoutEntry) (int, error) {

	err := s.Update(func(tx *bolt.Tx) error {

		b := tx.Bucket([]byte(PAYOUTS_BUCKET))
		if b == nil {
			return errors.New("Unable to locate payouts bucket")
		}

		id, err := b.NextSequence()
		if err != nil {
			return errors.Wrap(err, "Unable to get next payout run id")
		}
		run.ID = int(id)

		rb, err := b.CreateBucket(Itob(run.ID))
		if err != nil {
			return errors.Wrap(err, "Unable to create payout run bucket")
		}

		runBytes, err := json.Marshal(run)
		if err != nil {
			return errors.Wrap(err, "Unable to encode payout run")
		}

		if err := rb.Put([]byte(METADATA), runBytes); err != nil {
			return err
		}

		// Store each record as the value of the record address (key)
		for _, r := range records {

			recordBytes, err := json.Marshal(r)
			if err != nil {
				return errors.Wrap(err, "Unable to encode payout entry")
			}

			if err := rb.Put([]byte(r.Address), recordBytes); err != nil {
				return err
			}
		}

		return nil
	})

	return run.ID, err
}

// GetPayoutRunsAll returns the metadata of every run, oldest first
func (s *Storage) GetPayoutRunsAll() ([]PayoutRun, error) {

	runs := make([]PayoutRun, 0)

	err := s.View(func(tx *bolt.Tx) error {

		b := tx.Bucket([]byte(PAYOUTS_BUCKET))
		if b == nil {
			return errors.New("Unable to locate payouts bucket")
		}

		c := b.Cursor()

		for k, _ := c.First(); k != nil; k, _ = c.Next() {

			// keys are run ids, which are buckets of data
			runBucket := b.Bucket(k)
			if runBucket == nil {
				continue
			}

			var run PayoutRun
			if err := json.Unmarshal(runBucket.Get([]byte(METADATA)), &run); err != nil {
				return errors.Wrapf(err, "Unable to decode payout run %d", Btoi(k))
			}

			runs = append(runs, run)
		}

		return nil
	})

	return runs, err
}

// GetPayoutRun returns a run's metadata and its records keyed by address
func (s *Storage) GetPayoutRun(id int) (PayoutRun, map[string]PayoutEntry, error) {

	var run PayoutRun
	records := make(map[string]PayoutEntry)

	err := s.View(func(tx *bolt.Tx) error {

		b := tx.Bucket([]byte(PAYOUTS_BUCKET)).Bucket(Itob(id))
		if b == nil {
			return errors.Wrapf(ErrRunNotFound, "Run %d", id)
		}

		return b.ForEach(func(k, v []byte) error {

			if string(k) == METADATA {
				return errors.Wrap(json.Unmarshal(v, &run), "Unable to decode payout run")
			}

			var r PayoutEntry
			if err := json.Unmarshal(v, &r); err != nil {
				return errors.Wrap(err, "Unable to decode payout entry")
			}
			records[string(k)] = r

			return nil
		})
	})

	return run, records, err
}

// GetAddressPayouts returns every payout made to address, keyed by run id
func (s *Storage) GetAddressPayouts(address string) (map[int]PayoutEntry, error) {

	payouts := make(map[int]PayoutEntry)

	err := s.View(func(tx *bolt.Tx) error {

		b := tx.Bucket([]byte(PAYOUTS_BUCKET))
		if b == nil {
			return errors.New("Unable to locate payouts bucket")
		}

		return b.ForEach(func(k, _ []byte) error {

			runBucket := b.Bucket(k)
			if runBucket == nil {
				return nil
			}

			v := runBucket.Get([]byte(address))
			if v == nil {
				return nil
			}

			var r PayoutEntry
			if err := json.Unmarshal(v, &r); err != nil {
				return errors.Wrap(err, "Unable to decode payout entry")
			}
			payouts[Btoi(k)] = r

			return nil
		})
	})

	return payouts, err
}
