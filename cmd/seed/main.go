package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"versebattle/internal/cache"
	"versebattle/internal/model"
	"versebattle/internal/repository"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "versebattle"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewVerseRepo(client.Database(dbName))

	if err := repo.InsertMany(ctx, catalog()); err != nil {
		log.Fatalf("Failed to insert verses: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count verses: %v", err)
	}

	// Drop any stale cached copies so lookups see the fresh catalog.
	if redisURI := os.Getenv("REDIS_URI"); redisURI != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: strings.TrimPrefix(redisURI, "redis://"),
		})
		defer rdb.Close()
		if err := cache.NewVerseCache(rdb).InvalidateAll(ctx); err != nil {
			log.Printf("Warning: failed to invalidate verse cache: %v", err)
		}
	}

	fmt.Printf("Seeded verse catalog, %d verses total\n", count)
}

func catalog() []*model.Verse {
	return []*model.Verse{
		{
			ID:         "genesis-1-1",
			Reference:  "Genesis 1:1",
			Book:       "Genesis",
			Chapter:    1,
			VerseNum:   1,
			Difficulty: model.DifficultyEasy,
			Translations: map[string]string{
				"ESV":  "In the beginning, God created the heavens and the earth.",
				"NIV":  "In the beginning God created the heavens and the earth.",
				"KJV":  "In the beginning God created the heaven and the earth.",
				"NASB": "In the beginning God created the heavens and the earth.",
			},
			After: &model.VerseContext{
				Reference: "Genesis 1:2",
				Text:      "The earth was without form and void, and darkness was over the face of the deep. And the Spirit of God was hovering over the face of the waters.",
			},
		},
		{
			ID:         "psalm-23-1",
			Reference:  "Psalm 23:1",
			Book:       "Psalms",
			Chapter:    23,
			VerseNum:   1,
			Difficulty: model.DifficultyEasy,
			Translations: map[string]string{
				"ESV":  "The LORD is my shepherd; I shall not want.",
				"NIV":  "The LORD is my shepherd, I lack nothing.",
				"KJV":  "The LORD is my shepherd; I shall not want.",
				"NASB": "The LORD is my shepherd, I shall not want.",
			},
			After: &model.VerseContext{
				Reference: "Psalm 23:2",
				Text:      "He makes me lie down in green pastures. He leads me beside still waters.",
			},
		},
		{
			ID:         "john-3-16",
			Reference:  "John 3:16",
			Book:       "John",
			Chapter:    3,
			VerseNum:   16,
			Difficulty: model.DifficultyEasy,
			Translations: map[string]string{
				"ESV":  "For God so loved the world, that he gave his only Son, that whoever believes in him should not perish but have eternal life.",
				"NIV":  "For God so loved the world that he gave his one and only Son, that whoever believes in him shall not perish but have eternal life.",
				"KJV":  "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life.",
				"NASB": "For God so loved the world, that He gave His only begotten Son, that whoever believes in Him shall not perish, but have eternal life.",
			},
			Before: &model.VerseContext{
				Reference: "John 3:15",
				Text:      "that whoever believes in him may have eternal life.",
			},
			After: &model.VerseContext{
				Reference: "John 3:17",
				Text:      "For God did not send his Son into the world to condemn the world, but in order that the world might be saved through him.",
			},
		},
		{
			ID:         "jeremiah-29-11",
			Reference:  "Jeremiah 29:11",
			Book:       "Jeremiah",
			Chapter:    29,
			VerseNum:   11,
			Difficulty: model.DifficultyEasy,
			Translations: map[string]string{
				"ESV":  "For I know the plans I have for you, declares the LORD, plans for welfare and not for evil, to give you a future and a hope.",
				"NIV":  `"For I know the plans I have for you," declares the LORD, "plans to prosper you and not to harm you, plans to give you hope and a future."`,
				"KJV":  "For I know the thoughts that I think toward you, saith the LORD, thoughts of peace, and not of evil, to give you an expected end.",
				"NASB": `"For I know the plans that I have for you," declares the LORD, "plans for welfare and not for calamity to give you a future and a hope."`,
			},
			Before: &model.VerseContext{
				Reference: "Jeremiah 29:10",
				Text:      "For thus says the LORD: When seventy years are completed for Babylon, I will visit you, and I will fulfill to you my promise and bring you back to this place.",
			},
			After: &model.VerseContext{
				Reference: "Jeremiah 29:12",
				Text:      "Then you will call upon me and come and pray to me, and I will hear you.",
			},
		},
		{
			ID:         "proverbs-3-5",
			Reference:  "Proverbs 3:5",
			Book:       "Proverbs",
			Chapter:    3,
			VerseNum:   5,
			Difficulty: model.DifficultyEasy,
			Translations: map[string]string{
				"ESV":  "Trust in the LORD with all your heart, and do not lean on your own understanding.",
				"NIV":  "Trust in the LORD with all your heart and lean not on your own understanding;",
				"KJV":  "Trust in the LORD with all thine heart; and lean not unto thine own understanding.",
				"NASB": "Trust in the LORD with all your heart and do not lean on your own understanding.",
			},
			After: &model.VerseContext{
				Reference: "Proverbs 3:6",
				Text:      "In all your ways acknowledge him, and he will make straight your paths.",
			},
		},
		{
			ID:         "isaiah-40-31",
			Reference:  "Isaiah 40:31",
			Book:       "Isaiah",
			Chapter:    40,
			VerseNum:   31,
			Difficulty: model.DifficultyMedium,
			Translations: map[string]string{
				"ESV":  "but they who wait for the LORD shall renew their strength; they shall mount up with wings like eagles; they shall run and not be weary; they shall walk and not faint.",
				"NIV":  "but those who hope in the LORD will renew their strength. They will soar on wings like eagles; they will run and not grow weary, they will walk and not be faint.",
				"KJV":  "But they that wait upon the LORD shall renew their strength; they shall mount up with wings as eagles; they shall run, and not be weary; and they shall walk, and not faint.",
				"NASB": "Yet those who wait for the LORD will gain new strength; they will mount up with wings like eagles, they will run and not get tired, they will walk and not become weary.",
			},
			Before: &model.VerseContext{
				Reference: "Isaiah 40:30",
				Text:      "Even youths shall faint and be weary, and young men shall fall exhausted;",
			},
		},
		{
			ID:         "2-corinthians-5-17",
			Reference:  "2 Corinthians 5:17",
			Book:       "2 Corinthians",
			Chapter:    5,
			VerseNum:   17,
			Difficulty: model.DifficultyMedium,
			Translations: map[string]string{
				"ESV":  "Therefore, if anyone is in Christ, he is a new creation. The old has passed away; behold, the new has come.",
				"NIV":  "Therefore, if anyone is in Christ, the new creation has come: The old has gone, the new is here!",
				"KJV":  "Therefore if any man be in Christ, he is a new creature: old things are passed away; behold, all things are become new.",
				"NASB": "Therefore if anyone is in Christ, he is a new creature; the old things passed away; behold, new things have come.",
			},
			Before: &model.VerseContext{
				Reference: "2 Corinthians 5:16",
				Text:      "From now on, therefore, we regard no one according to the flesh. Even though we once regarded Christ according to the flesh, we regard him thus no longer.",
			},
			After: &model.VerseContext{
				Reference: "2 Corinthians 5:18",
				Text:      "All this is from God, who through Christ reconciled us to himself and gave us the ministry of reconciliation;",
			},
		},
		{
			ID:         "isaiah-41-10",
			Reference:  "Isaiah 41:10",
			Book:       "Isaiah",
			Chapter:    41,
			VerseNum:   10,
			Difficulty: model.DifficultyMedium,
			Translations: map[string]string{
				"ESV":  "fear not, for I am with you; be not dismayed, for I am your God; I will strengthen you, I will help you, I will uphold you with my righteous right hand.",
				"NIV":  "So do not fear, for I am with you; do not be dismayed, for I am your God. I will strengthen you and help you; I will uphold you with my righteous right hand.",
				"KJV":  "Fear thou not; for I am with thee: be not dismayed; for I am thy God: I will strengthen thee; yea, I will help thee; yea, I will uphold thee with the right hand of my righteousness.",
				"NASB": "Do not fear, for I am with you; do not anxiously look about you, for I am your God. I will strengthen you, surely I will help you, surely I will uphold you with My righteous right hand.",
			},
			Before: &model.VerseContext{
				Reference: "Isaiah 41:9",
				Text:      `you whom I took from the ends of the earth, and called from its farthest corners, saying to you, "You are my servant, I have chosen you and not cast you off";`,
			},
		},
		{
			ID:         "galatians-2-20",
			Reference:  "Galatians 2:20",
			Book:       "Galatians",
			Chapter:    2,
			VerseNum:   20,
			Difficulty: model.DifficultyHard,
			Translations: map[string]string{
				"ESV":  "I have been crucified with Christ. It is no longer I who live, but Christ who lives in me. And the life I now live in the flesh I live by faith in the Son of God, who loved me and gave himself for me.",
				"NIV":  "I have been crucified with Christ and I no longer live, but Christ lives in me. The life I now live in the body, I live by faith in the Son of God, who loved me and gave himself for me.",
				"KJV":  "I am crucified with Christ: nevertheless I live; yet not I, but Christ liveth in me: and the life which I now live in the flesh I live by the faith of the Son of God, who loved me, and gave himself for me.",
				"NASB": "I have been crucified with Christ; and it is no longer I who live, but Christ lives in me; and the life which I now live in the flesh I live by faith in the Son of God, who loved me and gave Himself up for me.",
			},
			Before: &model.VerseContext{
				Reference: "Galatians 2:19",
				Text:      "For through the law I died to the law, so that I might live to God.",
			},
			After: &model.VerseContext{
				Reference: "Galatians 2:21",
				Text:      "I do not nullify the grace of God, for if righteousness were through the law, then Christ died for no purpose.",
			},
		},
	}
}
