package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine"
)

const seedISBNPrefix = "978"

var (
	seedCategories = []string{"Fiction", "Software", "History", "Science", "Poetry"}
	seedPublishers = []string{"Penguin Random House", "O'Reilly Media", "Addison-Wesley"}
)

type seedCounts struct {
	books         int
	copiesPerBook int
	members       int
	staff         int
}

func newSeedCommand(load configLoader) *cobra.Command {
	var counts seedCounts

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and fill it with a demo catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), load, func(ctx context.Context, a *app) error {
				if err := a.store.CreateSchema(ctx); err != nil {
					return err
				}

				if err := seed(ctx, a.store, counts); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "seeded %d books, %d copies, %d members, %d staff\n",
					counts.books, counts.books*counts.copiesPerBook, counts.members, counts.staff)

				return err
			})
		},
	}

	cmd.Flags().IntVar(&counts.books, "books", 50, "number of books")
	cmd.Flags().IntVar(&counts.copiesPerBook, "copies", 3, "copies per book")
	cmd.Flags().IntVar(&counts.members, "members", 20, "number of members")
	cmd.Flags().IntVar(&counts.staff, "staff", 2, "number of staff")

	return cmd
}

// seed inserts publishers, books with their copies, members and staff.
// Rows that already exist are kept, so seeding twice is harmless.
func seed(ctx context.Context, store *sqlengine.Store, counts seedCounts) error {
	for _, name := range seedPublishers {
		if _, err := store.Publishers().Create(ctx, library.Publisher{PublisherName: name}); ignoreExisting(err) != nil {
			return err
		}
	}

	for i := range counts.books {
		isbn := seedISBN(i)

		_, err := store.Books().Create(ctx, library.Book{
			ISBN:        isbn,
			Title:       "Demo Title " + strconv.Itoa(i+1),
			Categories:  seedCategories[rand.IntN(len(seedCategories))],
			PublishYear: 1950 + rand.IntN(75),
			PublishName: seedPublishers[rand.IntN(len(seedPublishers))],
		})
		if ignoreExisting(err) != nil {
			return err
		}

		for c := range counts.copiesPerBook {
			copyID := int64(i*counts.copiesPerBook + c + 1)

			_, err := store.Copies().Create(ctx, library.Copy{
				CopyID:        copyID,
				ISBN:          isbn,
				ShelfLocation: string(rune('A'+i%26)) + "-" + strconv.Itoa(c+1),
				ConditionDesc: "good",
			})
			if ignoreExisting(err) != nil {
				return err
			}
		}
	}

	for i := range counts.members {
		id := int64(i + 1)

		_, err := store.Members().Create(ctx, library.Member{
			MemberID:   id,
			MemberName: "Member " + strconv.FormatInt(id, 10),
			Email:      "member" + strconv.FormatInt(id, 10) + "@library.example",
		})
		if ignoreExisting(err) != nil {
			return err
		}
	}

	for i := range counts.staff {
		id := int64(i + 1)

		_, err := store.Staff().Create(ctx, library.Staff{
			StaffID:   id,
			StaffName: "Librarian " + strconv.FormatInt(id, 10),
			Role:      "librarian",
		})
		if ignoreExisting(err) != nil {
			return err
		}
	}

	return nil
}

// seedISBN returns the i-th demo ISBN: 978 followed by ten digits.
func seedISBN(i int) string {
	return fmt.Sprintf("%s%010d", seedISBNPrefix, i+1)
}

func ignoreExisting(err error) error {
	if errors.Is(err, library.ErrAlreadyExists) {
		return nil
	}

	return err
}
